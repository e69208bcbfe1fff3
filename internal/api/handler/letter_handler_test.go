package handler

import (
	"Polyclinic/internal/api/dto"
	"Polyclinic/internal/service"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLetterService lets each test script the service layer.
type stubLetterService struct {
	createFn   func(patientID uint64, req *dto.CreateLetterReq) (*dto.LetterDTO, error)
	getFn      func(patientID, letterID uint64) (*dto.LetterDTO, error)
	markReadFn func(patientID, letterID uint64) error
	followUpFn func(patientID, letterID uint64, content string) (*dto.LetterMessageDTO, error)
	unreadFn   func(patientID uint64) (*dto.UnreadSummaryDTO, error)
	replyFn    func(letterID uint64, content string) error
}

func (s *stubLetterService) CreateLetter(ctx context.Context, patientID uint64, req *dto.CreateLetterReq) (*dto.LetterDTO, error) {
	return s.createFn(patientID, req)
}

func (s *stubLetterService) ListLetters(ctx context.Context, patientID uint64) ([]*dto.LetterDTO, error) {
	return nil, nil
}

func (s *stubLetterService) GetLetterForPatient(ctx context.Context, patientID, letterID uint64) (*dto.LetterDTO, error) {
	return s.getFn(patientID, letterID)
}

func (s *stubLetterService) MarkReplyRead(ctx context.Context, patientID, letterID uint64) error {
	return s.markReadFn(patientID, letterID)
}

func (s *stubLetterService) AddFollowUp(ctx context.Context, patientID, letterID uint64, content string) (*dto.LetterMessageDTO, error) {
	return s.followUpFn(patientID, letterID, content)
}

func (s *stubLetterService) PatientUnread(ctx context.Context, patientID uint64) (*dto.UnreadSummaryDTO, error) {
	return s.unreadFn(patientID)
}

func (s *stubLetterService) ListAllLetters(ctx context.Context) ([]*dto.LetterDTO, error) {
	return nil, nil
}

func (s *stubLetterService) GetLetterForChief(ctx context.Context, letterID uint64) (*dto.LetterDTO, error) {
	return nil, nil
}

func (s *stubLetterService) Reply(ctx context.Context, letterID uint64, content string) error {
	return s.replyFn(letterID, content)
}

func (s *stubLetterService) DeleteLetter(ctx context.Context, letterID uint64) error {
	return nil
}

func (s *stubLetterService) ChiefUnread(ctx context.Context) (*dto.UnreadSummaryDTO, error) {
	return s.unreadFn(0)
}

// identity injects what AuthMiddleware would have set.
func identity(patientID uint64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("patient_id", patientID)
		c.Set("role", role)
	}
}

func letterRouter(svc service.LetterService, patientID uint64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewLetterHandler(svc)
	g := r.Group("/api/letters", identity(patientID, "USER"))
	g.POST("", h.CreateLetter)
	g.GET("/unread", h.Unread)
	g.GET("/:letter_id", h.GetLetter)
	g.PATCH("/:letter_id", h.MarkReplyRead)
	g.POST("/:letter_id", h.AddFollowUp)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func TestCreateLetterHandler(t *testing.T) {
	t.Run("success envelope carries the thread", func(t *testing.T) {
		svc := &stubLetterService{
			createFn: func(patientID uint64, req *dto.CreateLetterReq) (*dto.LetterDTO, error) {
				assert.Equal(t, uint64(1), patientID)
				return &dto.LetterDTO{ID: 12, Subject: req.Subject}, nil
			},
		}
		w, envelope := doJSON(t, letterRouter(svc, 1), http.MethodPost, "/api/letters",
			dto.CreateLetterReq{Subject: "Прием", Content: "Прошу записать меня на прием"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 200, envelope.Code)
	})

	t.Run("validation error becomes HTTP 400", func(t *testing.T) {
		svc := &stubLetterService{
			createFn: func(uint64, *dto.CreateLetterReq) (*dto.LetterDTO, error) {
				return nil, service.ErrLetterContentShort
			},
		}
		w, envelope := doJSON(t, letterRouter(svc, 1), http.MethodPost, "/api/letters",
			dto.CreateLetterReq{Subject: "Прием", Content: "Мало"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 400, envelope.Code)
		assert.Equal(t, service.ErrLetterContentShort.Error(), envelope.Message)
	})

	t.Run("missing fields rejected by binding", func(t *testing.T) {
		svc := &stubLetterService{}
		w, _ := doJSON(t, letterRouter(svc, 1), http.MethodPost, "/api/letters", map[string]string{"subject": "Тема"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetLetterHandler(t *testing.T) {
	t.Run("foreign letter answers 403", func(t *testing.T) {
		svc := &stubLetterService{
			getFn: func(uint64, uint64) (*dto.LetterDTO, error) {
				return nil, service.ErrForbidden
			},
		}
		w, _ := doJSON(t, letterRouter(svc, 2), http.MethodGet, "/api/letters/7", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown letter answers 404", func(t *testing.T) {
		svc := &stubLetterService{
			getFn: func(uint64, uint64) (*dto.LetterDTO, error) {
				return nil, service.ErrLetterNotFound
			},
		}
		w, _ := doJSON(t, letterRouter(svc, 1), http.MethodGet, "/api/letters/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id answers 400", func(t *testing.T) {
		svc := &stubLetterService{}
		w, _ := doJSON(t, letterRouter(svc, 1), http.MethodGet, "/api/letters/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUnreadHandler(t *testing.T) {
	svc := &stubLetterService{
		unreadFn: func(patientID uint64) (*dto.UnreadSummaryDTO, error) {
			return &dto.UnreadSummaryDTO{
				Items: []dto.UnreadItem{{Kind: "letter", ID: 12}},
				Count: 1,
			}, nil
		},
	}
	w, envelope := doJSON(t, letterRouter(svc, 1), http.MethodGet, "/api/letters/unread", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The payload shape is what the polling client parses.
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var summary dto.UnreadSummaryDTO
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, 1, summary.Count)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "letter", summary.Items[0].Kind)
	assert.Equal(t, uint64(12), summary.Items[0].ID)
}

func TestMarkReplyReadHandler(t *testing.T) {
	called := false
	svc := &stubLetterService{
		markReadFn: func(patientID, letterID uint64) error {
			called = true
			assert.Equal(t, uint64(5), letterID)
			return nil
		},
	}
	w, _ := doJSON(t, letterRouter(svc, 1), http.MethodPatch, "/api/letters/5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}
