// Package catalog is the static mapping from declared (family, measurement)
// pairs to the remote agent module that samples them, plus the default
// families/measurements used when the operator doesn't name one explicitly.
package catalog

// modules is the two-level family -> measurement -> agent module mapping.
var modules = map[string]map[string]string{
	"CPU": {
		"idle":   "cpu-stat",
		"user":   "cpu-stat",
		"system": "cpu-stat",
		"iowait": "cpu-stat",
		"nice":   "cpu-stat",
	},
	"System": {
		"la1":        "cpu-la",
		"la5":        "cpu-la",
		"la15":       "cpu-la",
		"csw":        "cpu-stat",
		"int":        "cpu-stat",
		"numproc":    "cpu-stat",
		"numthreads": "cpu-stat",
	},
	"Memory": {
		"free":   "mem",
		"used":   "mem",
		"cached": "mem",
		"buff":   "mem",
	},
	"Disk": {
		"read":  "disk",
		"write": "disk",
	},
	"Net": {
		"recv":       "net",
		"send":       "net",
		"tx":         "net-tx-rx",
		"rx":         "net-tx-rx",
		"retransmit": "net-retrans",
		"estab":      "net-tcp",
		"closewait":  "net-tcp",
		"timewait":   "net-tcp",
	},
}

// defaultMeasurements lists the measurements applied to a family when the
// operator names the family without a `measure` attribute.
var defaultMeasurements = map[string][]string{
	"System": {"csw", "int"},
	"CPU":    {"user", "system", "iowait"},
	"Memory": {"free", "used"},
	"Disk":   {"read", "write"},
	"Net":    {"recv", "send"},
}

// DefaultFamilies is the family set applied when a host declares no metrics
// at all.
var DefaultFamilies = []string{"CPU", "Memory", "Disk", "Net"}

// Families reports every known family name, in a fixed, stable order.
func Families() []string {
	return []string{"CPU", "System", "Memory", "Disk", "Net"}
}

// ModuleFor returns the agent module name for a (family, measurement) pair.
// The empty string means the pair is unknown; the label is still emitted to
// WantedColumns by the caller, but no module is added to the host's set.
func ModuleFor(family, measurement string) string {
	fam, ok := modules[family]
	if !ok {
		return ""
	}
	return fam[measurement]
}

// DefaultMeasurementsFor returns the default measurement list for a family,
// used when the operator names the family with no explicit measure list. A
// copy is returned so callers can't mutate the catalog's internal slice.
func DefaultMeasurementsFor(family string) []string {
	ms, ok := defaultMeasurements[family]
	if !ok {
		return nil
	}
	out := make([]string, len(ms))
	copy(out, ms)
	return out
}

// IsFamily reports whether tag names one of the recognized metric families.
func IsFamily(tag string) bool {
	_, ok := modules[tag]
	return ok
}
