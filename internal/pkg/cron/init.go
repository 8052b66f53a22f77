package cron

import (
	"fmt"
	log "log/slog"
)

// InitCron 注册并启动，注册失败时不启动引擎
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}
	mgr.Start()
	for _, e := range mgr.engine.Entries() {
		log.Info("Cron job scheduled", "pattern", mgr.cleanupPattern, "next", e.Next)
	}
	return nil
}
