package service

import (
	"Polyclinic/internal/api/dto"
	"Polyclinic/internal/model"
	"Polyclinic/internal/pkg/consts"
	"Polyclinic/internal/repository"
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// LetterService implements the patient↔chief-doctor thread semantics:
// creation, first reply, follow-up messages and both read-state
// transitions.
type LetterService interface {
	CreateLetter(ctx context.Context, patientID uint64, req *dto.CreateLetterReq) (*dto.LetterDTO, error)
	ListLetters(ctx context.Context, patientID uint64) ([]*dto.LetterDTO, error)
	GetLetterForPatient(ctx context.Context, patientID, letterID uint64) (*dto.LetterDTO, error)
	MarkReplyRead(ctx context.Context, patientID, letterID uint64) error
	AddFollowUp(ctx context.Context, patientID, letterID uint64, content string) (*dto.LetterMessageDTO, error)
	PatientUnread(ctx context.Context, patientID uint64) (*dto.UnreadSummaryDTO, error)

	ListAllLetters(ctx context.Context) ([]*dto.LetterDTO, error)
	GetLetterForChief(ctx context.Context, letterID uint64) (*dto.LetterDTO, error)
	Reply(ctx context.Context, letterID uint64, content string) error
	DeleteLetter(ctx context.Context, letterID uint64) error
	ChiefUnread(ctx context.Context) (*dto.UnreadSummaryDTO, error)
}

type letterServiceImpl struct {
	letterRepo  repository.LetterRepo
	patientRepo repository.PatientRepo
	chatRepo    repository.ChatRepo
}

func NewLetterService(letterRepo repository.LetterRepo, patientRepo repository.PatientRepo, chatRepo repository.ChatRepo) LetterService {
	return &letterServiceImpl{
		letterRepo:  letterRepo,
		patientRepo: patientRepo,
		chatRepo:    chatRepo,
	}
}

// CreateLetter opens a new thread. Blocked patients are rejected before
// any validation runs.
func (s *letterServiceImpl) CreateLetter(ctx context.Context, patientID uint64, req *dto.CreateLetterReq) (*dto.LetterDTO, error) {
	if err := s.ensureNotBlocked(ctx, patientID); err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(req.Subject)
	content := strings.TrimSpace(req.Content)
	if utf8.RuneCountInString(subject) < consts.MinLetterSubjectLen {
		return nil, ErrSubjectTooShort
	}
	if utf8.RuneCountInString(content) < consts.MinLetterContentLen {
		return nil, ErrLetterContentShort
	}

	letter := &model.Letter{
		PatientID:   patientID,
		Subject:     subject,
		Content:     content,
		IsReplyRead: true,
	}
	if err := s.letterRepo.Create(ctx, letter); err != nil {
		return nil, err
	}
	return s.toLetterDTO(letter), nil
}

func (s *letterServiceImpl) ListLetters(ctx context.Context, patientID uint64) ([]*dto.LetterDTO, error) {
	letters, err := s.letterRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return s.toLetterDTOs(letters), nil
}

// GetLetterForPatient fetches the thread and clears every patient-facing
// unread marker in the same request. After a 200 the caller's unread
// count for this thread is zero.
func (s *letterServiceImpl) GetLetterForPatient(ctx context.Context, patientID, letterID uint64) (*dto.LetterDTO, error) {
	letter, err := s.getOwnedLetter(ctx, patientID, letterID)
	if err != nil {
		return nil, err
	}

	if err = s.letterRepo.MarkPatientSideRead(ctx, letterID); err != nil {
		return nil, err
	}

	letter.IsReplyRead = true
	for i := range letter.Messages {
		if letter.Messages[i].SenderType == model.SenderChiefDoctor {
			letter.Messages[i].IsRead = true
		}
	}
	return s.toLetterDTO(letter), nil
}

// MarkReplyRead is the lightweight variant: same flag transition, no
// thread payload.
func (s *letterServiceImpl) MarkReplyRead(ctx context.Context, patientID, letterID uint64) error {
	if _, err := s.getOwnedLetter(ctx, patientID, letterID); err != nil {
		return err
	}
	return s.letterRepo.MarkPatientSideRead(ctx, letterID)
}

// AddFollowUp appends a patient message. Only allowed once the chief
// doctor has replied; re-arms the chief-side unread markers.
func (s *letterServiceImpl) AddFollowUp(ctx context.Context, patientID, letterID uint64, content string) (*dto.LetterMessageDTO, error) {
	if err := s.ensureNotBlocked(ctx, patientID); err != nil {
		return nil, err
	}

	letter, err := s.getOwnedLetter(ctx, patientID, letterID)
	if err != nil {
		return nil, err
	}
	if letter.Reply == nil {
		return nil, ErrLetterNoReply
	}

	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < consts.MinLetterContentLen {
		return nil, ErrLetterContentShort
	}

	msg, err := s.letterRepo.AppendPatientMessage(ctx, letterID, content)
	if err != nil {
		return nil, err
	}

	res := &dto.LetterMessageDTO{}
	_ = copier.Copy(res, msg)
	return res, nil
}

func (s *letterServiceImpl) PatientUnread(ctx context.Context, patientID uint64) (*dto.UnreadSummaryDTO, error) {
	replies, err := s.letterRepo.UnreadRepliesForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	threads, err := s.letterRepo.UnreadMessagesForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	chats, err := s.chatRepo.UnreadForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return buildSummary(replies, threads, chats), nil
}

func (s *letterServiceImpl) ListAllLetters(ctx context.Context) ([]*dto.LetterDTO, error) {
	letters, err := s.letterRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.toLetterDTOs(letters), nil
}

// GetLetterForChief fetches the thread and clears the chief-doctor-side
// unread state in the same request.
func (s *letterServiceImpl) GetLetterForChief(ctx context.Context, letterID uint64) (*dto.LetterDTO, error) {
	letter, err := s.letterRepo.GetByID(ctx, letterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLetterNotFound
		}
		return nil, err
	}

	if err = s.letterRepo.MarkChiefSideRead(ctx, letterID); err != nil {
		return nil, err
	}

	letter.IsRead = true
	letter.HasNewPatientMessage = false
	for i := range letter.Messages {
		if letter.Messages[i].SenderType == model.SenderPatient {
			letter.Messages[i].IsRead = true
		}
	}
	return s.toLetterDTO(letter), nil
}

// Reply records the first answer on the thread itself; every later call
// appends a chief-doctor message. Either way the patient side becomes
// unread again.
func (s *letterServiceImpl) Reply(ctx context.Context, letterID uint64, content string) error {
	letter, err := s.letterRepo.GetByID(ctx, letterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLetterNotFound
		}
		return err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return ErrChatMessageEmpty
	}

	if letter.Reply == nil {
		return s.letterRepo.SetReply(ctx, letterID, content)
	}
	_, err = s.letterRepo.AppendChiefMessage(ctx, letterID, content)
	return err
}

func (s *letterServiceImpl) DeleteLetter(ctx context.Context, letterID uint64) error {
	if _, err := s.letterRepo.GetByID(ctx, letterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLetterNotFound
		}
		return err
	}
	return s.letterRepo.Delete(ctx, letterID)
}

func (s *letterServiceImpl) ChiefUnread(ctx context.Context) (*dto.UnreadSummaryDTO, error) {
	letters, err := s.letterRepo.UnreadLettersForChief(ctx)
	if err != nil {
		return nil, err
	}
	threads, err := s.letterRepo.UnreadMessagesForChief(ctx)
	if err != nil {
		return nil, err
	}
	return buildSummary(letters, threads, nil), nil
}

func (s *letterServiceImpl) ensureNotBlocked(ctx context.Context, patientID uint64) error {
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

func (s *letterServiceImpl) getOwnedLetter(ctx context.Context, patientID, letterID uint64) (*model.Letter, error) {
	letter, err := s.letterRepo.GetByID(ctx, letterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLetterNotFound
		}
		return nil, err
	}
	if letter.PatientID != patientID {
		return nil, ErrForbidden
	}
	return letter, nil
}

func (s *letterServiceImpl) toLetterDTO(m *model.Letter) *dto.LetterDTO {
	d := &dto.LetterDTO{}
	_ = copier.Copy(d, m)
	return d
}

func (s *letterServiceImpl) toLetterDTOs(letters []*model.Letter) []*dto.LetterDTO {
	res := make([]*dto.LetterDTO, 0, len(letters))
	for _, m := range letters {
		res = append(res, s.toLetterDTO(m))
	}
	return res
}

// buildSummary assembles the polling payload: thread-level events,
// message-level events, then chat events, each under its own kind so
// clients dedup them independently.
func buildSummary(letterIDs, messageThreadIDs, chatIDs []uint64) *dto.UnreadSummaryDTO {
	items := make([]dto.UnreadItem, 0, len(letterIDs)+len(messageThreadIDs)+len(chatIDs))
	for _, id := range letterIDs {
		items = append(items, dto.UnreadItem{Kind: consts.UnreadKindLetter, ID: id})
	}
	for _, id := range messageThreadIDs {
		items = append(items, dto.UnreadItem{Kind: consts.UnreadKindMessage, ID: id})
	}
	for _, id := range chatIDs {
		items = append(items, dto.UnreadItem{Kind: consts.UnreadKindChat, ID: id})
	}
	return &dto.UnreadSummaryDTO{Items: items, Count: len(items)}
}
