package config

// ValueType constants describing how a config key's string value should be
// interpreted.
const (
	ValueTypeString = 1
	ValueTypeNum    = 2
	ValueTypeBool   = 3
)

// ConfigMeta holds description and value type for a config key.
type ConfigMeta struct {
	Desc      string
	ValueType int
}

// ConfigMetaMap returns metadata for all known collector config keys.
func ConfigMetaMap() map[string]ConfigMeta {
	return map[string]ConfigMeta{
		"loglevel":              {"Collector log level (info|debug); agent loglevel comes from the DOM", ValueTypeString},
		"default_python":        {"Remote python interpreter path (not applied to compiled agent specs)", ValueTypeString},
		"ssh_connect_timeout_s": {"SSH/SCP connect timeout in seconds (not applied by the transport)", ValueTypeNum},
		"artifact_dir":          {"Directory for per-agent temp config/log files", ValueTypeString},
		"agent_payload_dir":     {"Local directory copied to each remote host", ValueTypeString},
		"force_debug_env":       {"Force DEBUG=1 in the remote agent's launch env", ValueTypeBool},
		"log_dir":               {"Collector log directory path", ValueTypeString},
		"log_rotation_enabled":  {"Enable daily log file rotation", ValueTypeBool},
		"log_keep_days":         {"Number of days to keep rotated log files", ValueTypeNum},
	}
}
