package config

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
)

// StartWatcher starts a background goroutine that checks the config file
// for changes every interval and reloads it if modified. logger may be nil.
func StartWatcher(ctx context.Context, filePath string, interval time.Duration, logger *zap.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current := Get()
				if current == nil {
					continue
				}
				info, err := os.Stat(filePath)
				if err != nil {
					continue
				}
				if info.ModTime().After(current.modTime) {
					newCfg, err := Load(filePath)
					if err != nil {
						if logger != nil {
							logger.Error("config reload failed", zap.Error(err))
						}
						continue
					}
					globalConfig.Store(newCfg)
					if logger != nil {
						logger.Info("config reloaded", zap.String("file", filePath))
					}
				}
			}
		}
	}()
}
