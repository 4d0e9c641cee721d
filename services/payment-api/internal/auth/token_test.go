package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testUser(role string) models.User {
	return models.User{
		ID:            uuid.New(),
		Username:      "alice_01",
		AccountNumber: "12345678",
		Role:          role,
	}
}

func TestGenerateParse_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", "payportal", time.Hour)
	user := testUser(pkg.RoleEmployee)

	token, err := tm.Generate(user)
	require.NoError(t, err)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "alice_01", claims.Username)
	assert.Equal(t, "12345678", claims.AccountNumber)
	assert.Equal(t, pkg.RoleEmployee, claims.Role)
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", "payportal", time.Hour).Generate(testUser(pkg.RoleUser))
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", "payportal", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestParse_RejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", "payportal", -time.Minute)
	token, err := tm.Generate(testUser(pkg.RoleUser))
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.Error(t, err)
}

func TestParse_RejectsWrongIssuer(t *testing.T) {
	token, err := NewTokenManager("test-secret", "other-portal", time.Hour).Generate(testUser(pkg.RoleUser))
	require.NoError(t, err)

	_, err = NewTokenManager("test-secret", "payportal", time.Hour).Parse(token)
	assert.Error(t, err)
}

func protectedRouter(tm *TokenManager, role string) *gin.Engine {
	r := gin.New()
	group := r.Group("/", Authenticate(tm))
	if role != "" {
		group.Use(RequireRole(role))
	}
	group.GET("/ping", func(c *gin.Context) {
		claims := ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{"username": claims.Username})
	})
	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateMiddleware(t *testing.T) {
	tm := NewTokenManager("test-secret", "payportal", time.Hour)
	r := protectedRouter(tm, "")

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "garbage").Code)

	token, err := tm.Generate(testUser(pkg.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, doGet(r, token).Code)
}

func TestRequireRole(t *testing.T) {
	tm := NewTokenManager("test-secret", "payportal", time.Hour)
	r := protectedRouter(tm, pkg.RoleEmployee)

	userToken, err := tm.Generate(testUser(pkg.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, doGet(r, userToken).Code)

	employeeToken, err := tm.Generate(testUser(pkg.RoleEmployee))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, doGet(r, employeeToken).Code)
}
