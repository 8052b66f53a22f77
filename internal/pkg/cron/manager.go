package cron

import (
	log "log/slog"

	"GymChat/internal/job"

	"github.com/robfig/cron/v3"
)

// defaultCleanupPattern 每小时整点
const defaultCleanupPattern = "0 0 * * * *"

// Manager 定时任务引擎，目前只有附件清理
type Manager struct {
	engine         *cron.Cron
	cleanupPattern string
	cleanupJob     *job.AttachmentCleanupJob
}

func NewCronManager(cleanupPattern string, cleanupJob *job.AttachmentCleanupJob) *Manager {
	if cleanupPattern == "" {
		cleanupPattern = defaultCleanupPattern
	}
	l := slogCronLogger{}
	return &Manager{
		engine: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		cleanupPattern: cleanupPattern,
		cleanupJob:     cleanupJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	_, err := s.engine.AddJob(s.cleanupPattern, s.cleanupJob)
	return err
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

// slogCronLogger 把 cron 内部日志（panic 恢复、跳过执行）接入 slog
type slogCronLogger struct{}

func (slogCronLogger) Info(msg string, keysAndValues ...any) {
	log.Debug("cron: "+msg, keysAndValues...)
}

func (slogCronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
