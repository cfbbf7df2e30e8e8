// Package stream implements the Stream Multiplexer (E): it owns many
// running agents' stdout/stderr, polls them non-blockingly, applies each
// host's filter mask per line, and fans out assembled batches to listeners.
//
// Rather than the original's single-threaded select() readiness loop, this
// implementation uses the alternative the design notes explicitly sanction
// (spec §9): one lightweight reader goroutine per stream feeding a single
// shared channel that Poll drains without blocking.
package stream

import (
	"bufio"
	"io"

	"go.uber.org/zap"

	"github.com/zbum/moncollector/internal/columns"
	"github.com/zbum/moncollector/internal/transport"
)

// Listener receives batches of already-filtered lines. A batch is never
// delivered empty (spec §6 sink contract).
type Listener interface {
	Deliver(batch string)
}

type lineKind int

const (
	kindStdout lineKind = iota
	kindStderr
	kindClosed
)

type lineEvent struct {
	host string
	kind lineKind
	line string
}

type trackedStream struct {
	stdoutClosed bool
	stderrClosed bool
}

// Multiplexer owns the set of running agent streams and the per-host filter
// state derived from their announcements.
type Multiplexer struct {
	wanted    columns.Wanted
	mask      columns.Mask
	listeners []Listener
	logger    *zap.Logger

	events  chan lineEvent
	tracked map[string]*trackedStream

	buf               string
	firstDataReceived bool
}

// New creates a Multiplexer for the given per-host wanted-columns set
// (produced by the Config Compiler).
func New(wanted columns.Wanted, logger *zap.Logger) *Multiplexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multiplexer{
		wanted:  wanted,
		mask:    make(columns.Mask),
		logger:  logger,
		events:  make(chan lineEvent, 256),
		tracked: make(map[string]*trackedStream),
	}
}

// AddListener registers a sink for filtered batches.
func (m *Multiplexer) AddListener(l Listener) {
	m.listeners = append(m.listeners, l)
}

// Mask exposes the FilterMask built so far, for inspection and testing.
func (m *Multiplexer) Mask() columns.Mask {
	return m.mask
}

// Register starts tracking a running agent's stdout/stderr, spawning one
// reader goroutine per stream (spec §9's sanctioned alternative to a single
// readiness primitive).
func (m *Multiplexer) Register(host string, proc *transport.Process) {
	m.tracked[host] = &trackedStream{}
	go m.readLines(host, proc.Stdout, kindStdout)
	go m.readLines(host, proc.Stderr, kindStderr)
}

func (m *Multiplexer) readLines(host string, r io.Reader, kind lineKind) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m.events <- lineEvent{host: host, kind: kind, line: scanner.Text()}
	}
	m.events <- lineEvent{host: host, kind: kindClosed}
}

// Poll drains everything currently buffered in the shared event channel
// without blocking (the "zero timeout" budget of spec §4.5 step 1),
// applies the per-host filter, reaps any stream whose both sides have
// closed, and on every poll after the first non-empty one, delivers the
// accumulated batch to listeners. Returns the number of still-tracked
// streams.
func (m *Multiplexer) Poll() int {
drain:
	for {
		select {
		case ev := <-m.events:
			m.handleEvent(ev)
		default:
			break drain
		}
	}

	if !m.firstDataReceived {
		if m.buf != "" {
			m.firstDataReceived = true
			m.logger.Info("monitoring received first data")
		}
	} else if m.buf != "" {
		text := m.buf
		for _, l := range m.listeners {
			l.Deliver(text)
		}
		m.buf = ""
	}

	return len(m.tracked)
}

func (m *Multiplexer) handleEvent(ev lineEvent) {
	switch ev.kind {
	case kindStderr:
		if ev.line != "" {
			m.logger.Error("agent stream error", zap.String("host", ev.host), zap.String("line", ev.line))
		}
	case kindStdout:
		if ev.line == "" {
			return
		}
		out, isDebug := filterLine(ev.host, ev.line, m.wanted, m.mask, func(msg string) {
			m.logger.Warn(msg, zap.String("host", ev.host))
		})
		if isDebug {
			m.logger.Debug("agent debug output", zap.String("host", ev.host), zap.String("line", ev.line))
			return
		}
		m.buf += out
	case kindClosed:
		ts, ok := m.tracked[ev.host]
		if !ok {
			return
		}
		m.reap(ev.host, ts)
	}
}

// reap marks one of a host's streams closed and, once both are closed,
// drops the host from the tracked set — this is how ended agents leave the
// system (spec §4.5 step 2).
func (m *Multiplexer) reap(host string, ts *trackedStream) {
	if !ts.stdoutClosed {
		ts.stdoutClosed = true
	} else {
		ts.stderrClosed = true
	}
	if ts.stdoutClosed && ts.stderrClosed {
		delete(m.tracked, host)
	}
}
