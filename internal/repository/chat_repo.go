package repository

import (
	"Polyclinic/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type ChatRepo interface {
	Create(ctx context.Context, chat *model.OperatorChat, firstMessage *model.OperatorChatMessage) error
	GetByID(ctx context.Context, chatID uint64) (*model.OperatorChat, error)
	GetOpenByPatient(ctx context.Context, patientID uint64) (*model.OperatorChat, error)
	List(ctx context.Context, unreadOnly bool) ([]*model.OperatorChat, error)
	Delete(ctx context.Context, chatID uint64) error

	AppendMessage(ctx context.Context, msg *model.OperatorChatMessage) error
	MarkOperatorSideRead(ctx context.Context, chatID uint64) error
	MarkPatientSideRead(ctx context.Context, chatID uint64) error

	Claim(ctx context.Context, chatID, operatorID uint64) error
	Close(ctx context.Context, chatID uint64) error

	SetPatientBlocked(ctx context.Context, patientID uint64, blocked bool) error

	UnreadForPatient(ctx context.Context, patientID uint64) ([]uint64, error)

	CloseStaleWaiting(ctx context.Context, before time.Time) (int64, error)
	PurgeClosedBefore(ctx context.Context, before time.Time) (int64, error)
}

type chatRepoImpl struct {
	db *gorm.DB
}

func NewChatRepo(db *gorm.DB) ChatRepo {
	return &chatRepoImpl{db: db}
}

// Create inserts the chat with its opening message. The unique index on
// active_key makes a concurrent double-create surface as
// gorm.ErrDuplicatedKey instead of a second open chat.
func (s *chatRepoImpl) Create(ctx context.Context, chat *model.OperatorChat, firstMessage *model.OperatorChatMessage) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		firstMessage.ChatID = chat.ID
		return tx.Create(firstMessage).Error
	})
}

func (s *chatRepoImpl) GetByID(ctx context.Context, chatID uint64) (*model.OperatorChat, error) {
	var chat model.OperatorChat
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&chat, chatID).Error
	return &chat, err
}

func (s *chatRepoImpl) GetOpenByPatient(ctx context.Context, patientID uint64) (*model.OperatorChat, error) {
	var chat model.OperatorChat
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("patient_id = ? AND status IN ?", patientID, []string{model.ChatStatusWaiting, model.ChatStatusActive}).
		First(&chat).Error
	return &chat, err
}

func (s *chatRepoImpl) List(ctx context.Context, unreadOnly bool) ([]*model.OperatorChat, error) {
	var chats []*model.OperatorChat
	query := s.db.WithContext(ctx).Order("last_message_at DESC")
	if unreadOnly {
		query = query.Where("has_unread_operator = ?", true)
	}
	err := query.Find(&chats).Error
	return chats, err
}

func (s *chatRepoImpl) Delete(ctx context.Context, chatID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Delete(&model.OperatorChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.OperatorChat{}, chatID).Error
	})
}

// AppendMessage stores the message and flips the recipient-side unread
// flag plus last_message_at in one transaction.
func (s *chatRepoImpl) AppendMessage(ctx context.Context, msg *model.OperatorChatMessage) error {
	updates := map[string]interface{}{
		"last_message_at": time.Now(),
	}
	if msg.SenderType == model.SenderPatient {
		updates["has_unread_operator"] = true
	} else {
		updates["has_unread_patient"] = true
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.OperatorChat{}).Where("id = ?", msg.ChatID).
			Updates(updates).Error
	})
}

func (s *chatRepoImpl) MarkOperatorSideRead(ctx context.Context, chatID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.OperatorChat{}).Where("id = ?", chatID).
			Update("has_unread_operator", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.OperatorChatMessage{}).
			Where("chat_id = ? AND sender_type = ? AND is_read = ?", chatID, model.SenderPatient, false).
			Update("is_read", true).Error
	})
}

func (s *chatRepoImpl) MarkPatientSideRead(ctx context.Context, chatID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.OperatorChat{}).Where("id = ?", chatID).
			Update("has_unread_patient", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.OperatorChatMessage{}).
			Where("chat_id = ? AND sender_type = ? AND is_read = ?", chatID, model.SenderOperator, false).
			Update("is_read", true).Error
	})
}

func (s *chatRepoImpl) Claim(ctx context.Context, chatID, operatorID uint64) error {
	return s.db.WithContext(ctx).Model(&model.OperatorChat{}).Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"operator_id": operatorID,
			"status":      model.ChatStatusActive,
		}).Error
}

// Close frees active_key so the patient may open a new chat later.
func (s *chatRepoImpl) Close(ctx context.Context, chatID uint64) error {
	return s.db.WithContext(ctx).Model(&model.OperatorChat{}).Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"status":     model.ChatStatusClosed,
			"active_key": nil,
		}).Error
}

// SetPatientBlocked toggles the moderation flag; blocking also removes
// every chat (and message) the patient owns, in the same transaction.
func (s *chatRepoImpl) SetPatientBlocked(ctx context.Context, patientID uint64, blocked bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Patient{}).Where("id = ?", patientID).
			Update("is_messages_blocked", blocked).Error; err != nil {
			return err
		}
		if !blocked {
			return nil
		}

		var chatIDs []uint64
		if err := tx.Model(&model.OperatorChat{}).
			Where("patient_id = ?", patientID).
			Pluck("id", &chatIDs).Error; err != nil {
			return err
		}
		if len(chatIDs) == 0 {
			return nil
		}
		if err := tx.Where("chat_id IN ?", chatIDs).Delete(&model.OperatorChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Where("patient_id = ?", patientID).Delete(&model.OperatorChat{}).Error
	})
}

// UnreadForPatient lists the caller's chats holding unseen operator
// messages, feeding the "chat" kind of the unread summary.
func (s *chatRepoImpl) UnreadForPatient(ctx context.Context, patientID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.OperatorChat{}).
		Where("patient_id = ? AND has_unread_patient = ?", patientID, true).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// CloseStaleWaiting closes WAITING chats idle since before the cutoff.
func (s *chatRepoImpl) CloseStaleWaiting(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.OperatorChat{}).
		Where("status = ? AND last_message_at < ?", model.ChatStatusWaiting, before).
		Updates(map[string]interface{}{
			"status":     model.ChatStatusClosed,
			"active_key": nil,
		})
	return res.RowsAffected, res.Error
}

// PurgeClosedBefore removes long-closed chats with their messages.
func (s *chatRepoImpl) PurgeClosedBefore(ctx context.Context, before time.Time) (int64, error) {
	var purged int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chatIDs []uint64
		if err := tx.Model(&model.OperatorChat{}).
			Where("status = ? AND last_message_at < ?", model.ChatStatusClosed, before).
			Pluck("id", &chatIDs).Error; err != nil {
			return err
		}
		if len(chatIDs) == 0 {
			return nil
		}
		if err := tx.Where("chat_id IN ?", chatIDs).Delete(&model.OperatorChatMessage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", chatIDs).Delete(&model.OperatorChat{})
		purged = res.RowsAffected
		return res.Error
	})
	return purged, err
}
