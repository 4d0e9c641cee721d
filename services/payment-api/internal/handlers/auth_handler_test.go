package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/novabank/payportal/pkg"
	middleware "github.com/novabank/payportal/pkg/middlewares"
	"github.com/novabank/payportal/pkg/views"
	svcviews "github.com/novabank/payportal/services/payment-api/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAuthService struct {
	registered *svcviews.RegisterRequest
	profile    views.UserProfile
	login      svcviews.LoginResponse
	err        error
}

func (s *stubAuthService) Register(_ context.Context, _ string, req svcviews.RegisterRequest) (views.UserProfile, error) {
	s.registered = &req
	return s.profile, s.err
}

func (s *stubAuthService) Login(_ context.Context, _ string, _ svcviews.LoginRequest) (svcviews.LoginResponse, error) {
	return s.login, s.err
}

func authRouter(svc *stubAuthService) *gin.Engine {
	h := NewAuthHandler(zap.NewNop(), svc)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	h.RegisterRoutes(api, passThrough)
	return r
}

func TestRegisterEndpoint(t *testing.T) {
	svc := &stubAuthService{profile: views.UserProfile{Username: "alice_01", Role: pkg.RoleUser}}
	r := authRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/register", `{"username":"alice_01","email":"a@x.com"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.registered)
	assert.Equal(t, "alice_01", svc.registered.Username)

	var profile views.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, pkg.RoleUser, profile.Role)
}

func TestRegisterEndpoint_Duplicate(t *testing.T) {
	svc := &stubAuthService{err: pkg.NewAppError(pkg.ErrDuplicateIdentityCode, "duplicate value violates unique constraint", nil)}
	r := authRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/register", `{"username":"alice_01"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp pkg.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, pkg.ErrDuplicateIdentityCode.Code, resp.Code)
}

func TestLoginEndpoint(t *testing.T) {
	svc := &stubAuthService{login: svcviews.LoginResponse{Token: "jwt-token"}}
	r := authRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/login", `{"accountNumber":"11111111","username":"alice_01","password":"x"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp svcviews.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-token", resp.Token)
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkg.NewAppError(pkg.ErrInvalidCredentialsCode, pkg.ErrInvalidCredentialsCode.Message, nil)}
	r := authRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/login", `{"accountNumber":"11111111","username":"alice_01","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginEndpoint_BadJSON(t *testing.T) {
	r := authRouter(&stubAuthService{})

	w := doJSON(r, http.MethodPost, "/api/v1/auth/login", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
