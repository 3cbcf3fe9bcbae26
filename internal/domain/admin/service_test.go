package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio/internal/pkg/jwt"
)

/* ==================== MOCKS ==================== */

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken(subject, role string) (string, error) {
	args := m.Called(subject, role)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) TTL() time.Duration {
	return time.Hour
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

/* ==================== SERVICE ==================== */

func TestLogin_Success(t *testing.T) {
	tokens := new(MockTokenIssuer)
	tokens.On("GenerateToken", "admin", "admin").Return("signed", nil)
	svc := NewService(mustHash(t, "hunter2"), tokens)

	res, err := svc.Login(context.Background(), "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "signed", res.AccessToken)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	tokens.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	tokens := new(MockTokenIssuer)
	svc := NewService(mustHash(t, "hunter2"), tokens)

	_, err := svc.Login(context.Background(), "hunter3")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	tokens.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

func TestLogin_Disabled(t *testing.T) {
	svc := NewService("", new(MockTokenIssuer))

	_, err := svc.Login(context.Background(), "")
	assert.ErrorIs(t, err, ErrAdminDisabled)
}

func TestLogin_SigningFailure(t *testing.T) {
	tokens := new(MockTokenIssuer)
	tokens.On("GenerateToken", "admin", "admin").Return("", errors.New("boom"))
	svc := NewService(mustHash(t, "pw"), tokens)

	_, err := svc.Login(context.Background(), "pw")
	assert.EqualError(t, err, "boom")
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")))

	_, err = HashPassword("")
	assert.Error(t, err)
}

/* ==================== HANDLER ==================== */

func setupAuthRouter(t *testing.T, hash string) (*gin.Engine, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	j := jwt.New("test-secret", time.Hour)
	h := NewAuthHandler(NewService(hash, j))

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/admin"))
	return r, j
}

func postLogin(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginHandler(t *testing.T) {
	r, j := setupAuthRouter(t, mustHash(t, "s3cret"))

	w := postLogin(r, `{"password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Success bool          `json:"success"`
		Data    LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	claims, err := j.ValidateToken(body.Data.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	w = postLogin(r, `{"password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_FAILED")

	w = postLogin(r, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
