// Package compiler implements the Config Compiler (C): translating a parsed
// monitoring DOM plus an optional target-host hint into per-host agent
// specs and the operator's declared wanted-columns set.
package compiler

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/zbum/moncollector/internal/agent"
	"github.com/zbum/moncollector/internal/catalog"
	"github.com/zbum/moncollector/internal/columns"
	"github.com/zbum/moncollector/internal/domconfig"
)

// ConfigError is a fatal, prepare-time configuration failure: malformed
// input or a `[target]` sentinel used with no hint supplied (spec §7).
type ConfigError struct {
	Host string
	Op   string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error at %s (%s): %v", e.Host, e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

const targetSentinel = "[target]"

// Compile walks the Monitoring DOM and produces one AgentSpec per Host plus
// the per-host ordered list of wanted column labels (spec §4.3).
func Compile(mon *domconfig.Monitoring, targetHint string) ([]agent.Spec, columns.Wanted, error) {
	specs := make([]agent.Spec, 0, len(mon.Hosts))
	wanted := make(columns.Wanted)

	for _, h := range mon.Hosts {
		spec, labels, err := compileHost(h, targetHint)
		if err != nil {
			return nil, nil, err
		}
		specs = append(specs, spec)
		wanted[spec.Host] = labels
	}

	return specs, wanted, nil
}

func compileHost(h domconfig.Host, targetHint string) (agent.Spec, []string, error) {
	hostname := h.Address
	if hostname == targetSentinel {
		if targetHint == "" {
			return agent.Spec{}, nil, &ConfigError{Host: targetSentinel, Op: "resolve target", Err: fmt.Errorf("[target] used with no target hint")}
		}
		hostname = targetHint
	}

	var labels []string
	custom := map[string][]string{"tail": {}, "call": {}}
	moduleSet := newOrderedSet()
	metricsCount := 0

	for _, m := range h.Metrics {
		family := m.Family()
		switch {
		case catalog.IsFamily(family):
			metricsCount++
			measures := catalog.DefaultMeasurementsFor(family)
			if m.Measure != "" {
				measures = splitCSV(m.Measure)
			}
			for _, measure := range measures {
				if measure == "" {
					continue
				}
				labels = append(labels, family+"_"+measure)
				if mod := catalog.ModuleFor(family, measure); mod != "" {
					moduleSet.add(mod)
				}
			}
		case strings.EqualFold(family, "Custom"):
			metricsCount++
			diff := m.Diff
			if diff == "" {
				diff = "0"
			}
			descriptor := fmt.Sprintf("%s:%s:%s",
				base64.StdEncoding.EncodeToString([]byte(m.Label)),
				base64.StdEncoding.EncodeToString([]byte(m.Body)),
				diff,
			)
			labels = append(labels, "Custom:"+descriptor)
			method := m.Measure
			if method != "tail" && method != "call" {
				method = "call"
			}
			custom[method] = append(custom[method], descriptor)
		}
	}

	if metricsCount == 0 {
		for _, family := range catalog.DefaultFamilies {
			for _, measure := range catalog.DefaultMeasurementsFor(family) {
				labels = append(labels, family+"_"+measure)
				if mod := catalog.ModuleFor(family, measure); mod != "" {
					moduleSet.add(mod)
				}
			}
		}
	}

	metric := strings.Join(moduleSet.items, ",")
	if metric == "" {
		zap.L().Warn("no agent module resolved, falling back to cpu-stat", zap.String("host", hostname))
		metric = "cpu-stat"
	}

	spec := agent.Spec{
		Host:     hostname,
		Port:     intAttr(h.Port, agent.DefaultPort),
		Python:   stringAttr(h.Python, agent.DefaultPython),
		Interval: intAttr(h.Interval, agent.DefaultInterval),
		Priority: intAttr(h.Priority, agent.DefaultPriority),
		Metric:   metric,
		Custom:   custom,
	}

	return spec, labels, nil
}

func splitCSV(s string) []string {
	return strings.Split(s, ",")
}

func stringAttr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intAttr(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// orderedSet accumulates unique strings while preserving first-insertion
// order, so identical config compiles to an identical module list every
// time (spec §4.3: "module-set iteration must be order-preserving").
type orderedSet struct {
	items []string
	seen  map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) add(v string) {
	if s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}
