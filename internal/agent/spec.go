// Package agent implements the Agent Client (D): the lifecycle of one
// remote agent — generating its config, copying its payload, launching it,
// terminating it, and fetching its log.
package agent

// Spec is a fully-resolved plan for one remote agent (spec §3 AgentSpec).
type Spec struct {
	Host     string
	Port     int
	Python   string
	Interval int
	Priority int
	// Metric is the comma-separated list of agent-module names. Never
	// empty: compile-time falls back to "cpu-stat" when no modules
	// resolve (spec §3, §9 item d).
	Metric string
	// Custom maps method ("tail" or "call") to its ordered list of encoded
	// descriptors.
	Custom map[string][]string
}

// DefaultPort, DefaultInterval, DefaultPriority and DefaultPython are the
// AgentSpec defaults named in spec §3/§6.
const (
	DefaultPort     = 22
	DefaultInterval = 1
	DefaultPriority = 0
)

// DefaultPython is the remote interpreter path used when unspecified.
const DefaultPython = "/usr/bin/python"
