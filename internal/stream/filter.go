package stream

import (
	"strings"

	"github.com/zbum/moncollector/internal/columns"
)

// filterLine dispatches a single wire-protocol line from host to the
// appropriate shape handler (spec §4.5 "Per-line filter"). It returns the
// text to append to the output buffer (possibly empty) and whether the line
// was a debug line (logged at debug severity by the caller, never emitted).
func filterLine(host, line string, wanted columns.Wanted, mask columns.Mask, warn func(string)) (out string, isDebug bool) {
	switch {
	case strings.HasPrefix(line, "start;"):
		return filterAnnouncement(host, line, wanted, mask), false
	case strings.HasPrefix(line, "[debug]"):
		return "", true
	default:
		return filterData(host, line, mask, warn), false
	}
}

// filterAnnouncement processes `start;<host>;<ts>;<label_1>;...`: builds
// this host's FilterMask from the labels it actually wants, then re-emits
// the announcement projected through that mask (spec §4.5 bullet 1, §9 item c).
func filterAnnouncement(host, line string, wanted columns.Wanted, mask columns.Mask) string {
	keys := strings.Split(strings.TrimRight(line, "\n"), ";")
	// keys[0] == "start", keys[1] == host, keys[2] == timestamp, keys[3:] == labels
	wantedSet := make(map[string]bool, len(wanted[host]))
	for _, w := range wanted[host] {
		wantedSet[w] = true
	}

	var m []int
	for i := 3; i < len(keys); i++ {
		if wantedSet[keys[i]] {
			m = append(m, i-1)
		}
	}
	mask[host] = m

	// Re-projected through keys[1:] (host at index 0 of that slice) with the
	// implicit [0,1] prefix — the asymmetric offset documented in spec §9 item c.
	rest := keys[1:]
	projected, _ := project(rest, m)
	return "start;" + strings.Join(projected, ";") + "\n"
}

// filterData processes a data line `<ts>;<host>;<v1>;...` by projecting it
// through the host's existing FilterMask. Indices beyond the record length
// are tolerated: the line is dropped and a warning logged.
func filterData(host, line string, mask columns.Mask, warn func(string)) string {
	if !mask.Has(host) {
		return ""
	}
	keys := strings.Split(strings.TrimRight(line, "\n"), ";")
	projected, ok := project(keys, mask[host])
	if !ok {
		if warn != nil {
			warn("filter mask index out of range for host " + host)
		}
		return ""
	}
	if len(projected) == 0 {
		return ""
	}
	return strings.Join(projected, ";") + "\n"
}

// project applies the implicit [0,1] prefix followed by indices, returning
// the selected fields in order. ok is false if any index is out of range.
func project(record []string, indices []int) (out []string, ok bool) {
	combined := append([]int{0, 1}, indices...)
	out = make([]string, 0, len(combined))
	for _, idx := range combined {
		if idx < 0 || idx >= len(record) {
			return nil, false
		}
		out = append(out, record[idx])
	}
	return out, true
}
