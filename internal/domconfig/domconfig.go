// Package domconfig defines the parsed monitoring configuration DOM the
// Config Compiler consumes. Per the core's scope, parsing raw XML is an
// external concern — callers normally build a Monitoring value directly
// (tests, the demo CLI) — but a thin LoadXML convenience is provided for
// the common case of reading it off disk.
package domconfig

import (
	"encoding/xml"
	"io"
)

// Monitoring is the DOM root. LogLevel is read strictly off this element's
// own attribute, independent of anything declared per-host; any value other
// than "info" or "debug" defaults to "info".
type Monitoring struct {
	XMLName  xml.Name `xml:"Monitoring"`
	LogLevel string   `xml:"loglevel,attr"`
	Hosts    []Host   `xml:"Host"`
}

// EffectiveLogLevel returns LogLevel if it's "info" or "debug", else "info".
func (m *Monitoring) EffectiveLogLevel() string {
	if m.LogLevel == "debug" {
		return "debug"
	}
	return "info"
}

// Host is one <Host> element: connection attributes plus an unordered list
// of metric children. Metrics is a catch-all over every child element —
// recognized families (CPU, Memory, Disk, Net, System) and Custom entries
// alike — so the Config Compiler can walk them in document order, exactly
// as the original DOM walk does.
type Host struct {
	Address  string   `xml:"address,attr"`
	Port     string   `xml:"port,attr"`
	Interval string   `xml:"interval,attr"`
	Priority string   `xml:"priority,attr"`
	Python   string   `xml:"python,attr"`
	Metrics  []Metric `xml:",any"`
}

// Metric is one child element of a Host: either a recognized family tag
// (XMLName.Local is the family, e.g. "CPU") with an optional Measure
// attribute, or a "Custom" tag carrying Label/Diff attributes and its body
// text as Body.
type Metric struct {
	XMLName xml.Name
	Measure string `xml:"measure,attr"`
	Label   string `xml:"label,attr"`
	Diff    string `xml:"diff,attr"`
	Body    string `xml:",chardata"`
}

// Family returns the element's local tag name, e.g. "CPU" or "Custom".
func (m Metric) Family() string {
	return m.XMLName.Local
}

// LoadXML parses an XML document into a Monitoring DOM. This is a
// convenience wrapper over encoding/xml, not a load-bearing parser — the
// core never requires it; tests and callers may build a Monitoring value
// directly instead.
func LoadXML(r io.Reader) (*Monitoring, error) {
	var m Monitoring
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}
