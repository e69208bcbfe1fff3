package service

import (
	"Polyclinic/internal/api/dto"
	"Polyclinic/internal/model"
	"Polyclinic/internal/pkg/consts"
	"Polyclinic/internal/repository"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// Locker guards the open-chat fast path against double submission; the
// unique active_key index remains the hard guarantee underneath.
type Locker interface {
	TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration, retryTimes int) (bool, error)
	UnLock(ctx context.Context, key string, value interface{})
}

type ChatService interface {
	OpenChat(ctx context.Context, patientID uint64, content string) (*dto.ChatDTO, error)
	GetMyChat(ctx context.Context, patientID uint64) (*dto.ChatDTO, error)
	ListChats(ctx context.Context, unreadOnly bool) ([]*dto.ChatDTO, error)
	GetChat(ctx context.Context, callerID uint64, role string, chatID uint64) (*dto.ChatDTO, error)
	SendMessage(ctx context.Context, callerID uint64, role string, chatID uint64, content string) (*dto.ChatMessageDTO, error)
	UpdateChat(ctx context.Context, operatorID, chatID uint64, action string) error
	DeleteChat(ctx context.Context, chatID uint64) error
	BlockPatient(ctx context.Context, chatID uint64, action string) error
}

type chatServiceImpl struct {
	chatRepo    repository.ChatRepo
	patientRepo repository.PatientRepo
	locker      Locker
}

func NewChatService(chatRepo repository.ChatRepo, patientRepo repository.PatientRepo, locker Locker) ChatService {
	return &chatServiceImpl{
		chatRepo:    chatRepo,
		patientRepo: patientRepo,
		locker:      locker,
	}
}

// OpenChat starts a support session. A patient with an open chat gets
// ErrChatAlreadyOpen together with that chat, so the handler can return
// its id on the 400.
func (s *chatServiceImpl) OpenChat(ctx context.Context, patientID uint64, content string) (*dto.ChatDTO, error) {
	if err := s.ensureNotBlocked(ctx, patientID); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < consts.MinChatOpenLen {
		return nil, ErrChatOpenShort
	}

	lockKey := consts.ChatCreateLock + strconv.FormatUint(patientID, 10)
	locked, err := s.locker.TryLock(ctx, lockKey, patientID, 5*time.Second, 1)
	if err != nil {
		return nil, err
	}
	if !locked {
		return s.existingChatConflict(ctx, patientID)
	}
	defer s.locker.UnLock(ctx, lockKey, patientID)

	if existing, err := s.chatRepo.GetOpenByPatient(ctx, patientID); err == nil {
		return s.toChatDTO(existing), ErrChatAlreadyOpen
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	activeKey := patientID
	chat := &model.OperatorChat{
		PatientID:         patientID,
		Status:            model.ChatStatusWaiting,
		HasUnreadOperator: true,
		ActiveKey:         &activeKey,
		LastMessageAt:     time.Now(),
	}
	firstMessage := &model.OperatorChatMessage{
		SenderID:   patientID,
		SenderType: model.SenderPatient,
		Content:    content,
	}

	if err = s.chatRepo.Create(ctx, chat, firstMessage); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.existingChatConflict(ctx, patientID)
		}
		return nil, err
	}

	chat.Messages = []model.OperatorChatMessage{*firstMessage}
	return s.toChatDTO(chat), nil
}

// GetMyChat returns the patient's open session and clears the
// patient-side unread state, mirroring "opening the chat view".
func (s *chatServiceImpl) GetMyChat(ctx context.Context, patientID uint64) (*dto.ChatDTO, error) {
	chat, err := s.chatRepo.GetOpenByPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	if chat.HasUnreadPatient {
		if err = s.chatRepo.MarkPatientSideRead(ctx, chat.ID); err != nil {
			return nil, err
		}
		s.applyRead(chat, model.SenderOperator)
		chat.HasUnreadPatient = false
	}
	return s.toChatDTO(chat), nil
}

func (s *chatServiceImpl) ListChats(ctx context.Context, unreadOnly bool) ([]*dto.ChatDTO, error) {
	chats, err := s.chatRepo.List(ctx, unreadOnly)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.ChatDTO, 0, len(chats))
	for _, m := range chats {
		res = append(res, s.toChatDTO(m))
	}
	return res, nil
}

// GetChat serves both parties: staff reads clear the operator side,
// a patient may only read their own chat and clears the patient side.
func (s *chatServiceImpl) GetChat(ctx context.Context, callerID uint64, role string, chatID uint64) (*dto.ChatDTO, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	if isStaff(role) {
		if err = s.chatRepo.MarkOperatorSideRead(ctx, chatID); err != nil {
			return nil, err
		}
		s.applyRead(chat, model.SenderPatient)
		chat.HasUnreadOperator = false
		return s.toChatDTO(chat), nil
	}

	if chat.PatientID != callerID {
		return nil, ErrForbidden
	}
	if err = s.chatRepo.MarkPatientSideRead(ctx, chatID); err != nil {
		return nil, err
	}
	s.applyRead(chat, model.SenderOperator)
	chat.HasUnreadPatient = false
	return s.toChatDTO(chat), nil
}

// SendMessage appends a message from either party. Replies only need a
// single character; closed chats reject everything.
func (s *chatServiceImpl) SendMessage(ctx context.Context, callerID uint64, role string, chatID uint64, content string) (*dto.ChatMessageDTO, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	if chat.Status == model.ChatStatusClosed {
		return nil, ErrChatClosed
	}

	senderType := model.SenderOperator
	if !isStaff(role) {
		if chat.PatientID != callerID {
			return nil, ErrForbidden
		}
		if err = s.ensureNotBlocked(ctx, callerID); err != nil {
			return nil, err
		}
		senderType = model.SenderPatient
	}

	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < consts.MinChatReplyLen {
		return nil, ErrChatMessageEmpty
	}

	msg := &model.OperatorChatMessage{
		ChatID:     chatID,
		SenderID:   callerID,
		SenderType: senderType,
		Content:    content,
	}
	if err = s.chatRepo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	res := &dto.ChatMessageDTO{}
	_ = copier.Copy(res, msg)
	return res, nil
}

// UpdateChat handles the staff-side lifecycle verbs. A closed chat stays
// closed; reviving it would bypass the active_key uniqueness guarantee.
func (s *chatServiceImpl) UpdateChat(ctx context.Context, operatorID, chatID uint64, action string) error {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChatNotFound
		}
		return err
	}

	switch action {
	case consts.ChatActionClaim:
		if chat.Status == model.ChatStatusClosed {
			return ErrChatClosed
		}
		return s.chatRepo.Claim(ctx, chatID, operatorID)
	case consts.ChatActionClose:
		return s.chatRepo.Close(ctx, chatID)
	default:
		return ErrUnknownAction
	}
}

func (s *chatServiceImpl) DeleteChat(ctx context.Context, chatID uint64) error {
	if _, err := s.chatRepo.GetByID(ctx, chatID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChatNotFound
		}
		return err
	}
	return s.chatRepo.Delete(ctx, chatID)
}

// BlockPatient toggles the moderation flag for the chat's owner.
// Blocking cascade-deletes the patient's chats.
func (s *chatServiceImpl) BlockPatient(ctx context.Context, chatID uint64, action string) error {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChatNotFound
		}
		return err
	}

	switch action {
	case consts.BlockActionBlock:
		return s.chatRepo.SetPatientBlocked(ctx, chat.PatientID, true)
	case consts.BlockActionUnblock:
		return s.chatRepo.SetPatientBlocked(ctx, chat.PatientID, false)
	default:
		return ErrUnknownAction
	}
}

func (s *chatServiceImpl) existingChatConflict(ctx context.Context, patientID uint64) (*dto.ChatDTO, error) {
	existing, err := s.chatRepo.GetOpenByPatient(ctx, patientID)
	if err != nil {
		return nil, ErrChatAlreadyOpen
	}
	return s.toChatDTO(existing), ErrChatAlreadyOpen
}

func (s *chatServiceImpl) ensureNotBlocked(ctx context.Context, patientID uint64) error {
	patient, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPatientNotFound
		}
		return err
	}
	if patient.IsMessagesBlocked {
		return ErrMessagesBlocked
	}
	return nil
}

func (s *chatServiceImpl) applyRead(chat *model.OperatorChat, senderType string) {
	for i := range chat.Messages {
		if chat.Messages[i].SenderType == senderType {
			chat.Messages[i].IsRead = true
		}
	}
}

func (s *chatServiceImpl) toChatDTO(m *model.OperatorChat) *dto.ChatDTO {
	d := &dto.ChatDTO{}
	_ = copier.Copy(d, m)
	return d
}

func isStaff(role string) bool {
	switch role {
	case model.RoleOperator, model.RoleAdmin, model.RoleChiefDoctor:
		return true
	}
	return false
}
