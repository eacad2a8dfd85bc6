package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/jwt"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)

	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

func newSessionRouter(tm *jwt.TokenManager) *gin.Engine {
	router := gin.New()
	router.Use(ActorSessionMiddleware(tm, "", false))
	router.GET("/me", func(c *gin.Context) {
		session, err := GetActorSession(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, session)
	})
	return router
}

func TestActorSessionMiddleware_ValidCookie(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "mentorshub", 1)
	router := newSessionRouter(tm)

	token, err := tm.GenerateToken("user-1", "participant", "user@example.com", "Jess")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", http.NoBody)
	req.AddCookie(&http.Cookie{Name: ActorSessionCookieName, Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"actorId":"user-1"`)
	assert.Contains(t, w.Body.String(), string(models.RoleParticipant))
}

func TestActorSessionMiddleware_MissingCookie(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "mentorshub", 1)
	router := newSessionRouter(tm)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActorSessionMiddleware_TamperedToken(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "mentorshub", 1)
	other := jwt.NewTokenManager("other-secret", "mentorshub", 1)
	router := newSessionRouter(tm)

	token, err := other.GenerateToken("user-1", "participant", "user@example.com", "Jess")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", http.NoBody)
	req.AddCookie(&http.Cookie{Name: ActorSessionCookieName, Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActorSessionMiddleware_UnknownRole(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "mentorshub", 1)
	router := newSessionRouter(tm)

	token, err := tm.GenerateToken("user-1", "superadmin", "user@example.com", "Jess")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", http.NoBody)
	req.AddCookie(&http.Cookie{Name: ActorSessionCookieName, Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(WebhookAuthMiddleware("hook-secret"))
	router.POST("/hook", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/hook", http.NoBody)
	req.Header.Set("x-webhook-secret", "hook-secret")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/hook", http.NoBody)
	req.Header.Set("x-webhook-secret", "wrong")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/hook", http.NoBody)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInternalAPIAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(InternalAPIAuthMiddleware("internal-token"))
	router.GET("/internal", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/internal", http.NoBody)
	req.Header.Set("x-internal-sessions-api-auth-token", "internal-token")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/internal", http.NoBody)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
