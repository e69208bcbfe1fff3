package service

import (
	"Polyclinic/internal/api/dto"
	"Polyclinic/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubPatientRepo struct {
	patients map[uint64]*model.Patient
}

func (s *stubPatientRepo) Create(ctx context.Context, patient *model.Patient) error {
	s.patients[patient.ID] = patient
	return nil
}

func (s *stubPatientRepo) GetByID(ctx context.Context, id uint64) (*model.Patient, error) {
	p, ok := s.patients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubPatientRepo) GetByPhone(ctx context.Context, phone string) (*model.Patient, error) {
	for _, p := range s.patients {
		if p.Phone == phone {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubLetterRepo struct {
	letters map[uint64]*model.Letter
	nextID  uint64

	patientReadCalls []uint64
	chiefReadCalls   []uint64
	setReplyCalls    []string
	chiefMsgCalls    []string
	patientMsgCalls  []string

	unreadReplies      []uint64
	unreadPatientMsgs  []uint64
	unreadChiefLetters []uint64
	unreadChiefMsgs    []uint64
}

func newStubLetterRepo() *stubLetterRepo {
	return &stubLetterRepo{letters: make(map[uint64]*model.Letter), nextID: 1}
}

func (s *stubLetterRepo) Create(ctx context.Context, letter *model.Letter) error {
	letter.ID = s.nextID
	s.nextID++
	s.letters[letter.ID] = letter
	return nil
}

func (s *stubLetterRepo) GetByID(ctx context.Context, letterID uint64) (*model.Letter, error) {
	l, ok := s.letters[letterID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return l, nil
}

func (s *stubLetterRepo) ListByPatient(ctx context.Context, patientID uint64) ([]*model.Letter, error) {
	var res []*model.Letter
	for _, l := range s.letters {
		if l.PatientID == patientID {
			res = append(res, l)
		}
	}
	return res, nil
}

func (s *stubLetterRepo) ListAll(ctx context.Context) ([]*model.Letter, error) {
	var res []*model.Letter
	for _, l := range s.letters {
		res = append(res, l)
	}
	return res, nil
}

func (s *stubLetterRepo) Delete(ctx context.Context, letterID uint64) error {
	delete(s.letters, letterID)
	return nil
}

func (s *stubLetterRepo) MarkPatientSideRead(ctx context.Context, letterID uint64) error {
	s.patientReadCalls = append(s.patientReadCalls, letterID)
	return nil
}

func (s *stubLetterRepo) MarkChiefSideRead(ctx context.Context, letterID uint64) error {
	s.chiefReadCalls = append(s.chiefReadCalls, letterID)
	return nil
}

func (s *stubLetterRepo) SetReply(ctx context.Context, letterID uint64, content string) error {
	s.setReplyCalls = append(s.setReplyCalls, content)
	l := s.letters[letterID]
	l.Reply = &content
	l.IsReplyRead = false
	return nil
}

func (s *stubLetterRepo) AppendPatientMessage(ctx context.Context, letterID uint64, content string) (*model.LetterMessage, error) {
	s.patientMsgCalls = append(s.patientMsgCalls, content)
	return &model.LetterMessage{ID: 100, LetterID: letterID, SenderType: model.SenderPatient, Content: content}, nil
}

func (s *stubLetterRepo) AppendChiefMessage(ctx context.Context, letterID uint64, content string) (*model.LetterMessage, error) {
	s.chiefMsgCalls = append(s.chiefMsgCalls, content)
	return &model.LetterMessage{ID: 101, LetterID: letterID, SenderType: model.SenderChiefDoctor, Content: content}, nil
}

func (s *stubLetterRepo) UnreadRepliesForPatient(ctx context.Context, patientID uint64) ([]uint64, error) {
	return s.unreadReplies, nil
}

func (s *stubLetterRepo) UnreadMessagesForPatient(ctx context.Context, patientID uint64) ([]uint64, error) {
	return s.unreadPatientMsgs, nil
}

func (s *stubLetterRepo) UnreadLettersForChief(ctx context.Context) ([]uint64, error) {
	return s.unreadChiefLetters, nil
}

func (s *stubLetterRepo) UnreadMessagesForChief(ctx context.Context) ([]uint64, error) {
	return s.unreadChiefMsgs, nil
}

func letterReq(subject, content string) *dto.CreateLetterReq {
	return &dto.CreateLetterReq{Subject: subject, Content: content}
}

func newLetterFixture() (*stubLetterRepo, *stubChatRepo, LetterService) {
	letterRepo := newStubLetterRepo()
	chatRepo := newStubChatRepo()
	patientRepo := &stubPatientRepo{patients: map[uint64]*model.Patient{
		1: {ID: 1, Phone: "+79990000001", Role: model.RoleUser},
		2: {ID: 2, Phone: "+79990000002", Role: model.RoleUser, IsMessagesBlocked: true},
	}}
	return letterRepo, chatRepo, NewLetterService(letterRepo, patientRepo, chatRepo)
}

func TestCreateLetter(t *testing.T) {
	ctx := context.Background()

	t.Run("creates thread with reply marked read", func(t *testing.T) {
		_, _, svc := newLetterFixture()
		res, err := svc.CreateLetter(ctx, 1, letterReq("Прием", "Прошу записать меня на прием к кардиологу"))
		require.NoError(t, err)
		assert.Equal(t, uint64(1), res.ID)
		assert.Equal(t, "Прием", res.Subject)
		assert.True(t, res.IsReplyRead)
		assert.False(t, res.IsRead)
	})

	t.Run("subject shorter than three runes", func(t *testing.T) {
		_, _, svc := newLetterFixture()
		_, err := svc.CreateLetter(ctx, 1, letterReq("Жд", "Достаточно длинное содержание письма"))
		assert.ErrorIs(t, err, ErrSubjectTooShort)
	})

	t.Run("content rune boundary", func(t *testing.T) {
		_, _, svc := newLetterFixture()

		// 9 runes, rejected even though the UTF-8 byte length exceeds 10.
		_, err := svc.CreateLetter(ctx, 1, letterReq("Вопрос", "Жалуюсь я"))
		assert.ErrorIs(t, err, ErrLetterContentShort)

		_, err = svc.CreateLetter(ctx, 1, letterReq("Вопрос", "Жалуюсь яя"))
		assert.NoError(t, err)
	})

	t.Run("whitespace does not count", func(t *testing.T) {
		_, _, svc := newLetterFixture()
		_, err := svc.CreateLetter(ctx, 1, letterReq("   Ок   ", "Достаточно длинное содержание"))
		assert.ErrorIs(t, err, ErrSubjectTooShort)
	})

	t.Run("blocked patient rejected before validation", func(t *testing.T) {
		_, _, svc := newLetterFixture()
		_, err := svc.CreateLetter(ctx, 2, letterReq("x", "y"))
		assert.ErrorIs(t, err, ErrMessagesBlocked)
	})
}

func TestGetLetterForPatient(t *testing.T) {
	ctx := context.Background()
	letterRepo, _, svc := newLetterFixture()

	reply := "Записали вас на вторник"
	letterRepo.letters[7] = &model.Letter{
		ID: 7, PatientID: 1, Subject: "Прием", Content: "Содержание обращения",
		Reply: &reply, IsReplyRead: false,
		Messages: []model.LetterMessage{
			{ID: 1, LetterID: 7, SenderType: model.SenderChiefDoctor, Content: "Уточните дату", IsRead: false},
		},
	}

	res, err := svc.GetLetterForPatient(ctx, 1, 7)
	require.NoError(t, err)
	assert.True(t, res.IsReplyRead)
	require.Len(t, res.Messages, 1)
	assert.True(t, res.Messages[0].IsRead)
	assert.Equal(t, []uint64{7}, letterRepo.patientReadCalls)

	t.Run("foreign letter is forbidden", func(t *testing.T) {
		_, err := svc.GetLetterForPatient(ctx, 2, 7)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing letter", func(t *testing.T) {
		_, err := svc.GetLetterForPatient(ctx, 1, 999)
		assert.ErrorIs(t, err, ErrLetterNotFound)
	})
}

func TestAddFollowUp(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected before any reply exists", func(t *testing.T) {
		letterRepo, _, svc := newLetterFixture()
		letterRepo.letters[3] = &model.Letter{ID: 3, PatientID: 1}
		_, err := svc.AddFollowUp(ctx, 1, 3, "Хочу дополнить свое обращение")
		assert.ErrorIs(t, err, ErrLetterNoReply)
		assert.Empty(t, letterRepo.patientMsgCalls)
	})

	t.Run("appended after reply", func(t *testing.T) {
		letterRepo, _, svc := newLetterFixture()
		reply := "Ответ"
		letterRepo.letters[3] = &model.Letter{ID: 3, PatientID: 1, Reply: &reply}
		res, err := svc.AddFollowUp(ctx, 1, 3, "Хочу дополнить свое обращение")
		require.NoError(t, err)
		assert.Equal(t, model.SenderPatient, res.SenderType)
		assert.Equal(t, []string{"Хочу дополнить свое обращение"}, letterRepo.patientMsgCalls)
	})

	t.Run("too short follow-up", func(t *testing.T) {
		letterRepo, _, svc := newLetterFixture()
		reply := "Ответ"
		letterRepo.letters[3] = &model.Letter{ID: 3, PatientID: 1, Reply: &reply}
		_, err := svc.AddFollowUp(ctx, 1, 3, "Коротко")
		assert.ErrorIs(t, err, ErrLetterContentShort)
	})
}

func TestReply(t *testing.T) {
	ctx := context.Background()
	letterRepo, _, svc := newLetterFixture()
	letterRepo.letters[5] = &model.Letter{ID: 5, PatientID: 1, Subject: "Прием", Content: "Содержание"}

	// First answer lands on the thread itself.
	require.NoError(t, svc.Reply(ctx, 5, "Записали вас на вторник"))
	assert.Equal(t, []string{"Записали вас на вторник"}, letterRepo.setReplyCalls)
	assert.Empty(t, letterRepo.chiefMsgCalls)

	// Second answer becomes a thread message.
	require.NoError(t, svc.Reply(ctx, 5, "Кабинет 214"))
	assert.Equal(t, []string{"Кабинет 214"}, letterRepo.chiefMsgCalls)

	t.Run("empty reply", func(t *testing.T) {
		assert.ErrorIs(t, svc.Reply(ctx, 5, "   "), ErrChatMessageEmpty)
	})

	t.Run("missing letter", func(t *testing.T) {
		assert.ErrorIs(t, svc.Reply(ctx, 404, "Ответ"), ErrLetterNotFound)
	})
}

func TestGetLetterForChief(t *testing.T) {
	ctx := context.Background()
	letterRepo, _, svc := newLetterFixture()
	letterRepo.letters[9] = &model.Letter{
		ID: 9, PatientID: 1, IsRead: false, HasNewPatientMessage: true,
		Messages: []model.LetterMessage{
			{ID: 2, SenderType: model.SenderPatient, Content: "Дополнение", IsRead: false},
		},
	}

	res, err := svc.GetLetterForChief(ctx, 9)
	require.NoError(t, err)
	assert.True(t, res.IsRead)
	assert.False(t, res.HasNewPatientMessage)
	assert.True(t, res.Messages[0].IsRead)
	assert.Equal(t, []uint64{9}, letterRepo.chiefReadCalls)
}

func TestUnreadSummaries(t *testing.T) {
	ctx := context.Background()

	t.Run("patient summary mixes all three kinds", func(t *testing.T) {
		letterRepo, chatRepo, svc := newLetterFixture()
		letterRepo.unreadReplies = []uint64{12}
		letterRepo.unreadPatientMsgs = []uint64{12, 30}
		chatRepo.unreadChats = []uint64{7}

		res, err := svc.PatientUnread(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 4, res.Count)
		// The same thread id appears under both kinds without colliding.
		assert.Equal(t, "letter", res.Items[0].Kind)
		assert.Equal(t, uint64(12), res.Items[0].ID)
		assert.Equal(t, "message", res.Items[1].Kind)
		assert.Equal(t, uint64(12), res.Items[1].ID)
		assert.Equal(t, "chat", res.Items[3].Kind)
		assert.Equal(t, uint64(7), res.Items[3].ID)
	})

	t.Run("empty summary has zero count and empty items", func(t *testing.T) {
		_, _, svc := newLetterFixture()
		res, err := svc.ChiefUnread(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Count)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
	})

	t.Run("chief summary", func(t *testing.T) {
		letterRepo, _, svc := newLetterFixture()
		letterRepo.unreadChiefLetters = []uint64{4}
		letterRepo.unreadChiefMsgs = []uint64{8}

		res, err := svc.ChiefUnread(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Count)
		assert.Equal(t, "letter", res.Items[0].Kind)
		assert.Equal(t, "message", res.Items[1].Kind)
	})
}
