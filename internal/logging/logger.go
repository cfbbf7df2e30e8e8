// Package logging builds the collector's structured logger. Every component
// logs through a *zap.Logger so that a single call site (New) controls
// format, level, and file rotation — nothing downstream reaches for a
// logging library of its own.
package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logFilePrefix = "moncollector-"
	logFileSuffix = ".log"
	logFileFixed  = "moncollector.log"
	dateFormat    = "20060102"
)

// selfLog reports on the rotating writer's own housekeeping (rotation,
// cleanup, open/close failures). It writes to stderr directly rather than
// through zap.L(), since the global logger's core may itself be tee'd
// through a RotatingWriter — logging through it from inside a locked
// RotatingWriter method would risk recursing back into Write and
// self-deadlocking on w.mu.
var selfLog = zap.New(zapcore.NewCore(
	zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig()),
	zapcore.AddSync(os.Stderr),
	zapcore.InfoLevel,
)).Named("logging")

// RotatingWriter is an io.Writer that writes to a daily-rotated log file:
//   - Rotation enabled:  moncollector-YYYYMMDD.log, new file each day
//   - Rotation disabled: moncollector.log (fixed name)
//   - Old log files are cleaned up based on keepDays
type RotatingWriter struct {
	mu              sync.Mutex
	logDir          string
	rotationEnabled bool
	keepDays        int

	currentFile *os.File
	currentDate string // YYYYMMDD of the open file
}

// NewRotatingWriter creates a RotatingWriter. The actual file is opened
// lazily on first Write.
func NewRotatingWriter(logDir string, rotationEnabled bool, keepDays int) *RotatingWriter {
	return &RotatingWriter{
		logDir:          logDir,
		rotationEnabled: rotationEnabled,
		keepDays:        keepDays,
	}
}

// Write implements io.Writer.
func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureFile(); err != nil {
		return len(p), nil // don't fail the caller if file logging fails
	}

	n, err = w.currentFile.Write(p)
	if err != nil {
		w.closeFileLocked()
		return len(p), nil
	}
	return n, nil
}

// Sync implements zapcore.WriteSyncer.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.currentFile == nil {
		return nil
	}
	return w.currentFile.Sync()
}

// Start begins background goroutines for daily rotation and hourly cleanup.
func (w *RotatingWriter) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.checkRotation()
			}
		}
	}()

	go func() {
		w.clearOldLogs()
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.clearOldLogs()
			}
		}
	}()
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeFileLocked()
}

func (w *RotatingWriter) ensureFile() error {
	today := time.Now().Format(dateFormat)

	if w.currentFile != nil && w.currentDate == today {
		return nil
	}

	w.closeFileLocked()

	if err := os.MkdirAll(w.logDir, 0755); err != nil {
		selfLog.Warn("log directory create failed", zap.String("dir", w.logDir), zap.Error(err))
		return err
	}

	var filename string
	if w.rotationEnabled {
		filename = logFilePrefix + today + logFileSuffix
	} else {
		filename = logFileFixed
	}

	path := filepath.Join(w.logDir, filename)
	f, err := os.OpenFile(
		path,
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0644,
	)
	if err != nil {
		selfLog.Warn("log file open failed", zap.String("path", path), zap.Error(err))
		return err
	}

	w.currentFile = f
	w.currentDate = today
	return nil
}

func (w *RotatingWriter) closeFileLocked() {
	if w.currentFile != nil {
		if err := w.currentFile.Close(); err != nil {
			selfLog.Warn("log file close failed", zap.String("path", w.currentFile.Name()), zap.Error(err))
		}
		w.currentFile = nil
		w.currentDate = ""
	}
}

func (w *RotatingWriter) checkRotation() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.rotationEnabled {
		return
	}

	today := time.Now().Format(dateFormat)
	if w.currentDate != "" && w.currentDate != today {
		previous := w.currentDate
		w.closeFileLocked()
		selfLog.Info("log file rotated", zap.String("previous_date", previous), zap.String("date", today))
	}
}

func (w *RotatingWriter) clearOldLogs() {
	if !w.rotationEnabled || w.keepDays <= 0 {
		return
	}

	entries, err := os.ReadDir(w.logDir)
	if err != nil {
		selfLog.Warn("log directory read failed", zap.String("dir", w.logDir), zap.Error(err))
		return
	}

	cutoff := time.Now().AddDate(0, 0, -w.keepDays)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, logFileSuffix) {
			continue
		}

		dateStr := strings.TrimSuffix(strings.TrimPrefix(name, logFilePrefix), logFileSuffix)
		if len(dateStr) != 8 {
			continue
		}

		fileDate, err := time.Parse(dateFormat, dateStr)
		if err != nil {
			continue
		}

		if fileDate.Before(cutoff) {
			path := filepath.Join(w.logDir, name)
			if err := os.Remove(path); err != nil {
				selfLog.Warn("old log file delete failed", zap.String("path", path), zap.Error(err))
				continue
			}
			selfLog.Info("deleted old log file", zap.String("path", path))
		}
	}
}

// New builds a *zap.Logger that tees to stdout and, when logDir is
// non-empty, to a RotatingWriter. Call Start/Close on the returned
// *RotatingWriter (nil if logDir is empty) to run its background rotation
// and cleanup goroutines.
func New(logDir string, debug bool, rotationEnabled bool, keepDays int) (*zap.Logger, *RotatingWriter) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}

	var rw *RotatingWriter
	if logDir != "" {
		rw = NewRotatingWriter(logDir, rotationEnabled, keepDays)
		cores = append(cores, zapcore.NewCore(encoder, rw, level))
	}

	return zap.New(zapcore.NewTee(cores...)), rw
}
