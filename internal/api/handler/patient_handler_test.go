package handler

import (
	"Polyclinic/internal/api/dto"
	"Polyclinic/internal/service"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPatientService struct {
	registerFn func(req *dto.RegisterDTO) error
	loginFn    func(req *dto.CredentialDTO) (string, error)
}

func (s *stubPatientService) Register(ctx context.Context, req *dto.RegisterDTO) error {
	return s.registerFn(req)
}

func (s *stubPatientService) Login(ctx context.Context, req *dto.CredentialDTO) (string, error) {
	return s.loginFn(req)
}

func (s *stubPatientService) Logout(ctx context.Context, token string) error {
	return nil
}

func authRouter(svc service.PatientService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewPatientHandler(svc)
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	return r
}

func postRaw(t *testing.T, r *gin.Engine, path, body string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func TestRegisterHandler(t *testing.T) {
	t.Run("malformed json answers 400, not 500", func(t *testing.T) {
		svc := &stubPatientService{}
		w, envelope := postRaw(t, authRouter(svc), "/api/auth/register", `{"phone": "+7999`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 400, envelope.Code)
		assert.Equal(t, service.ErrParamInvalid.Error(), envelope.Message)
	})

	t.Run("missing password answers 400", func(t *testing.T) {
		svc := &stubPatientService{}
		w, _ := postRaw(t, authRouter(svc), "/api/auth/register", `{"phone":"+79990000001"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate phone answers 400", func(t *testing.T) {
		svc := &stubPatientService{
			registerFn: func(*dto.RegisterDTO) error { return service.ErrPhoneExist },
		}
		w, envelope := postRaw(t, authRouter(svc), "/api/auth/register",
			`{"phone":"+79990000001","password":"secret123"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, service.ErrPhoneExist.Error(), envelope.Message)
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("malformed json answers 400", func(t *testing.T) {
		svc := &stubPatientService{}
		w, _ := postRaw(t, authRouter(svc), "/api/auth/login", `not json at all`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("token travels back in the envelope", func(t *testing.T) {
		svc := &stubPatientService{
			loginFn: func(req *dto.CredentialDTO) (string, error) {
				assert.Equal(t, "+79990000001", req.Phone)
				return "signed-token", nil
			},
		}
		w, envelope := postRaw(t, authRouter(svc), "/api/auth/login",
			`{"phone":"+79990000001","password":"secret123"}`)
		require.Equal(t, http.StatusOK, w.Code)

		data, ok := envelope.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "signed-token", data["token"])
	})

	t.Run("wrong credentials answer 401", func(t *testing.T) {
		svc := &stubPatientService{
			loginFn: func(*dto.CredentialDTO) (string, error) {
				return "", service.ErrPasswordIncorrect
			},
		}
		w, _ := postRaw(t, authRouter(svc), "/api/auth/login",
			`{"phone":"+79990000001","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
