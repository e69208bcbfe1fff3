package job

import (
	"Polyclinic/internal/api/config"
	"Polyclinic/internal/repository"
	"context"
	log "log/slog"
	"time"
)

// ChatCleanupJob closes WAITING chats nobody picked up and purges chats
// that stayed CLOSED long enough. Closing frees the active_key slot so
// the patient can open a fresh chat.
type ChatCleanupJob struct {
	chatRepo repository.ChatRepo
}

func NewChatCleanupJob(chatRepo repository.ChatRepo) *ChatCleanupJob {
	return &ChatCleanupJob{chatRepo: chatRepo}
}

func (s *ChatCleanupJob) Run() {
	ctx := context.Background()
	log.Info("start chat cleanup job")

	waitingMaxAge := 24 * time.Hour
	closedMaxAge := 30 * 24 * time.Hour
	if cfg := config.Cfg; cfg != nil {
		if cfg.Cleanup.WaitingMaxAgeHours > 0 {
			waitingMaxAge = time.Duration(cfg.Cleanup.WaitingMaxAgeHours) * time.Hour
		}
		if cfg.Cleanup.ClosedMaxAgeDays > 0 {
			closedMaxAge = time.Duration(cfg.Cleanup.ClosedMaxAgeDays) * 24 * time.Hour
		}
	}

	closed, err := s.chatRepo.CloseStaleWaiting(ctx, time.Now().Add(-waitingMaxAge))
	if err != nil {
		log.Error("failed to close stale waiting chats", "err", err)
	} else if closed > 0 {
		log.Info("closed stale waiting chats", "count", closed)
	}

	purged, err := s.chatRepo.PurgeClosedBefore(ctx, time.Now().Add(-closedMaxAge))
	if err != nil {
		log.Error("failed to purge closed chats", "err", err)
	} else if purged > 0 {
		log.Info("purged closed chats", "count", purged)
	}
}
