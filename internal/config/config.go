// Package config holds the collector's own operational settings — the
// process-level knobs the operator rarely touches, as opposed to the
// per-run Monitoring DOM the Config Compiler consumes (see internal/domconfig).
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config holds all collector-process configuration values.
type Config struct {
	mu       sync.RWMutex
	props    map[string]string
	filePath string
	modTime  time.Time
}

var globalConfig atomic.Pointer[Config]

// Get returns the global config instance.
func Get() *Config {
	return globalConfig.Load()
}

// Load reads a moncollector.conf file and returns a new Config.
// If the file does not exist, a Config with empty props (defaults) is
// returned without an error, so the collector can start with no config file.
func Load(filePath string) (*Config, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		absPath = filePath
	}

	cfg := &Config{
		props:    make(map[string]string),
		filePath: absPath,
	}

	info, err := os.Stat(absPath)
	if err != nil {
		zap.L().Debug("config file not found, using defaults", zap.String("path", absPath))
		globalConfig.Store(cfg)
		return cfg, nil
	}
	cfg.modTime = info.ModTime()

	f, err := os.Open(absPath)
	if err != nil {
		zap.L().Warn("config file open failed, using defaults", zap.String("path", absPath), zap.Error(err))
		globalConfig.Store(cfg)
		return cfg, nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if key != "" {
			cfg.props[key] = val
		}
	}
	if err := scanner.Err(); err != nil {
		zap.L().Warn("config file scan failed", zap.String("path", absPath), zap.Error(err))
		return nil, err
	}

	globalConfig.Store(cfg)
	zap.L().Info("config loaded", cfg.logFields()...)
	return cfg, nil
}

// ---------------------------------------------------------------------------
// Generic typed getters
// ---------------------------------------------------------------------------

// GetString returns a config value, or the default if not set.
func (c *Config) GetString(key, defaultVal string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.props[key]; ok {
		return v
	}
	return defaultVal
}

// GetInt returns an integer config value.
func (c *Config) GetInt(key string, defaultVal int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.props[key]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetBool returns a boolean config value.
// Truthy values: "true", "1", "yes", "on" (case-insensitive).
func (c *Config) GetBool(key string, defaultVal bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.props[key]; ok {
		switch strings.ToLower(v) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultVal
}

// ---------------------------------------------------------------------------
// Convenience accessors for well-known configuration keys
// ---------------------------------------------------------------------------

// DefaultLogLevel returns loglevel (default "info"), the level of the
// collector's own log output. The loglevel written into each agent.cfg comes
// from the Monitoring DOM alone and does not fall back to this value.
func (c *Config) DefaultLogLevel() string {
	return c.GetString("loglevel", "info")
}

// DefaultPython returns default_python (default "/usr/bin/python"). The
// Config Compiler does not read it: a Host element without a python
// attribute gets agent.DefaultPython.
func (c *Config) DefaultPython() string {
	return c.GetString("default_python", "/usr/bin/python")
}

// SSHConnectTimeoutSeconds returns ssh_connect_timeout_s (default 5). The
// transport does not read it: ssh and scp always run with
// transport.ConnectTimeoutSeconds.
func (c *Config) SSHConnectTimeoutSeconds() int {
	return c.GetInt("ssh_connect_timeout_s", 5)
}

// ArtifactDir returns artifact_dir (default os.TempDir()), where per-agent
// temp config and log files are created.
func (c *Config) ArtifactDir() string {
	return c.GetString("artifact_dir", os.TempDir())
}

// PayloadDir returns agent_payload_dir (default "./agent"), the local
// directory recursively copied to each remote host by the Agent Client.
func (c *Config) PayloadDir() string {
	return c.GetString("agent_payload_dir", "./agent")
}

// ForceDebugEnv returns force_debug_env (default true), preserving the
// original collector's unconditional `DEBUG=1` (see spec §9 Open Questions,
// item a) as an explicit, overridable flag.
func (c *Config) ForceDebugEnv() bool {
	return c.GetBool("force_debug_env", true)
}

// LogDir returns log_dir (default "./logs").
func (c *Config) LogDir() string {
	return c.GetString("log_dir", "./logs")
}

// LogRotationEnabled returns log_rotation_enabled (default true).
func (c *Config) LogRotationEnabled() bool {
	return c.GetBool("log_rotation_enabled", true)
}

// LogKeepDays returns log_keep_days (default 14).
func (c *Config) LogKeepDays() int {
	return c.GetInt("log_keep_days", 14)
}

// FilePath returns the absolute path to the config file.
func (c *Config) FilePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filePath
}

// logFields renders the config as zap fields for a single startup log line.
func (c *Config) logFields() []zap.Field {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return []zap.Field{
		zap.String("path", c.filePath),
		zap.Int("properties", len(c.props)),
	}
}
