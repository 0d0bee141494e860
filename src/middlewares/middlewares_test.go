package middlewares

import (
	"context"
	"ddtours/src/types"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeIDTokens struct{}

func (fakeIDTokens) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken != "good-token" {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: "user-1", Claims: map[string]any{"email": "asha@example.com", "name": "Asha"}}, nil
}

func protectedRouter(v Verifier) *gin.Engine {
	r := gin.New()
	r.GET("/me", Authenticate(v), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, GetActor(ctx))
	})
	return r
}

func doGet(r http.Handler, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestFirebaseAuthenticate(t *testing.T) {
	r := protectedRouter(NewFirebaseVerifier(fakeIDTokens{}))

	w := doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "success").Bool())

	w = doGet(r, "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doGet(r, "Bearer good-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", gjson.Get(w.Body.String(), "id").String())
	assert.Equal(t, "asha@example.com", gjson.Get(w.Body.String(), "email").String())
	assert.Equal(t, "user", gjson.Get(w.Body.String(), "role").String())
}

func TestAdminTokenAuthenticate(t *testing.T) {
	secret := "test-secret"
	r := protectedRouter(NewAdminTokenVerifier(secret))
	now := time.Now()

	token, err := IssueAdminToken(secret, "ops@ddtours.in", time.Hour, now)
	require.NoError(t, err)
	w := doGet(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", gjson.Get(w.Body.String(), "role").String())
	assert.Equal(t, "ops@ddtours.in", gjson.Get(w.Body.String(), "email").String())

	expired, err := IssueAdminToken(secret, "ops@ddtours.in", time.Hour, now.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+expired).Code)

	forged, err := IssueAdminToken("other-secret", "ops@ddtours.in", time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+forged).Code)

	_, err = IssueAdminToken("", "ops@ddtours.in", time.Hour, now)
	assert.Error(t, err)
}

type stubVerifier struct{ err error }

func (s stubVerifier) Verify(context.Context, string) (*types.Actor, error) {
	return nil, s.err
}

func TestAuthenticateForbidden(t *testing.T) {
	r := protectedRouter(stubVerifier{err: types.ErrForbidden})
	assert.Equal(t, http.StatusForbidden, doGet(r, "Bearer x").Code)
}

type countingLimiter struct {
	hits map[string]int64
	err  error
}

func (c *countingLimiter) Hit(_ context.Context, key string, _ time.Duration) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.hits[key]++
	return c.hits[key], nil
}

func TestRateLimit(t *testing.T) {
	counter := &countingLimiter{hits: map[string]int64{}}
	r := gin.New()
	r.Use(RateLimit(counter, 2, 15*time.Minute))
	r.GET("/me", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doGet(r, "").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "").Code)
	w := doGet(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, gjson.Get(w.Body.String(), "message").String(), "15 minutes")

	counter.err = errors.New("redis down")
	assert.Equal(t, http.StatusOK, doGet(r, "").Code)
}

func TestMaintenanceAndHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecureHeaders(), RequestID(), MaintenanceMode(true))
	r.GET("/me", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	w := doGet(r, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
