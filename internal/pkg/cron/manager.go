package cron

import (
	"Polyclinic/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine         *cron.Cron
	chatCleanupJob *job.ChatCleanupJob
}

func NewCronManager(chatCleanupJob *job.ChatCleanupJob) *Manager {
	return &Manager{
		engine:         cron.New(cron.WithSeconds()),
		chatCleanupJob: chatCleanupJob,
	}
}

// RegisterJobs wires the scheduled jobs.
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob("@hourly", s.chatCleanupJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron engine started")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron engine stopped")
	s.engine.Stop()
}
