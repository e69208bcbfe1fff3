package repository

import (
	"Polyclinic/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type LetterRepo interface {
	Create(ctx context.Context, letter *model.Letter) error
	GetByID(ctx context.Context, letterID uint64) (*model.Letter, error)
	ListByPatient(ctx context.Context, patientID uint64) ([]*model.Letter, error)
	ListAll(ctx context.Context) ([]*model.Letter, error)
	Delete(ctx context.Context, letterID uint64) error

	MarkPatientSideRead(ctx context.Context, letterID uint64) error
	MarkChiefSideRead(ctx context.Context, letterID uint64) error

	SetReply(ctx context.Context, letterID uint64, content string) error
	AppendPatientMessage(ctx context.Context, letterID uint64, content string) (*model.LetterMessage, error)
	AppendChiefMessage(ctx context.Context, letterID uint64, content string) (*model.LetterMessage, error)

	UnreadRepliesForPatient(ctx context.Context, patientID uint64) ([]uint64, error)
	UnreadMessagesForPatient(ctx context.Context, patientID uint64) ([]uint64, error)
	UnreadLettersForChief(ctx context.Context) ([]uint64, error)
	UnreadMessagesForChief(ctx context.Context) ([]uint64, error)
}

type letterRepoImpl struct {
	db *gorm.DB
}

func NewLetterRepo(db *gorm.DB) LetterRepo {
	return &letterRepoImpl{db: db}
}

func (s *letterRepoImpl) Create(ctx context.Context, letter *model.Letter) error {
	return s.db.WithContext(ctx).Create(letter).Error
}

// GetByID loads the thread with its messages in created_at order.
func (s *letterRepoImpl) GetByID(ctx context.Context, letterID uint64) (*model.Letter, error) {
	var letter model.Letter
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&letter, letterID).Error
	return &letter, err
}

func (s *letterRepoImpl) ListByPatient(ctx context.Context, patientID uint64) ([]*model.Letter, error) {
	var letters []*model.Letter
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&letters).Error
	return letters, err
}

func (s *letterRepoImpl) ListAll(ctx context.Context) ([]*model.Letter, error) {
	var letters []*model.Letter
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&letters).Error
	return letters, err
}

func (s *letterRepoImpl) Delete(ctx context.Context, letterID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("letter_id = ?", letterID).Delete(&model.LetterMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Letter{}, letterID).Error
	})
}

// MarkPatientSideRead flips the reply flag and every chief-authored
// message in one transaction, so a concurrent reader never sees a
// half-updated thread.
func (s *letterRepoImpl) MarkPatientSideRead(ctx context.Context, letterID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Letter{}).Where("id = ?", letterID).
			Update("is_reply_read", true).Error; err != nil {
			return err
		}
		return tx.Model(&model.LetterMessage{}).
			Where("letter_id = ? AND sender_type = ? AND is_read = ?", letterID, model.SenderChiefDoctor, false).
			Update("is_read", true).Error
	})
}

// MarkChiefSideRead clears the chief-doctor-facing unread state.
func (s *letterRepoImpl) MarkChiefSideRead(ctx context.Context, letterID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Letter{}).Where("id = ?", letterID).
			Updates(map[string]interface{}{
				"is_read":                 true,
				"has_new_patient_message": false,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&model.LetterMessage{}).
			Where("letter_id = ? AND sender_type = ? AND is_read = ?", letterID, model.SenderPatient, false).
			Update("is_read", true).Error
	})
}

// SetReply records the first chief-doctor answer and re-arms the
// patient-side unread flag.
func (s *letterRepoImpl) SetReply(ctx context.Context, letterID uint64, content string) error {
	return s.db.WithContext(ctx).Model(&model.Letter{}).Where("id = ?", letterID).
		Updates(map[string]interface{}{
			"reply":         content,
			"replied_at":    time.Now(),
			"is_reply_read": false,
		}).Error
}

// AppendPatientMessage adds a follow-up and re-notifies the chief side
// atomically.
func (s *letterRepoImpl) AppendPatientMessage(ctx context.Context, letterID uint64, content string) (*model.LetterMessage, error) {
	msg := &model.LetterMessage{
		LetterID:   letterID,
		SenderType: model.SenderPatient,
		Content:    content,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.Letter{}).Where("id = ?", letterID).
			Updates(map[string]interface{}{
				"has_new_patient_message": true,
				"is_read":                 false,
			}).Error
	})
	return msg, err
}

// AppendChiefMessage adds a chief-doctor message and re-notifies the
// patient side atomically.
func (s *letterRepoImpl) AppendChiefMessage(ctx context.Context, letterID uint64, content string) (*model.LetterMessage, error) {
	msg := &model.LetterMessage{
		LetterID:   letterID,
		SenderType: model.SenderChiefDoctor,
		Content:    content,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.Letter{}).Where("id = ?", letterID).
			Update("is_reply_read", false).Error
	})
	return msg, err
}

// UnreadRepliesForPatient lists threads whose reply the patient has not
// opened yet.
func (s *letterRepoImpl) UnreadRepliesForPatient(ctx context.Context, patientID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.Letter{}).
		Where("patient_id = ? AND reply IS NOT NULL AND is_reply_read = ?", patientID, false).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// UnreadMessagesForPatient lists threads holding unread chief-doctor
// messages.
func (s *letterRepoImpl) UnreadMessagesForPatient(ctx context.Context, patientID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.LetterMessage{}).
		Distinct("letter_messages.letter_id").
		Joins("JOIN letters ON letters.id = letter_messages.letter_id").
		Where("letters.patient_id = ? AND letter_messages.sender_type = ? AND letter_messages.is_read = ?",
			patientID, model.SenderChiefDoctor, false).
		Order("letter_messages.letter_id").
		Pluck("letter_messages.letter_id", &ids).Error
	return ids, err
}

// UnreadLettersForChief lists brand-new threads the chief doctor has
// not opened.
func (s *letterRepoImpl) UnreadLettersForChief(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.Letter{}).
		Where("is_read = ? AND reply IS NULL", false).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// UnreadMessagesForChief lists threads where the patient wrote after a
// reply existed.
func (s *letterRepoImpl) UnreadMessagesForChief(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.Letter{}).
		Where("has_new_patient_message = ?", true).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}
