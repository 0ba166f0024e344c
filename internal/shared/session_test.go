package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "dd_session", "session-secret", time.Hour, false), mr
}

func sessionCookie(t *testing.T, res *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SignIn("tok", UserProfile{ID: "7", Name: "Ada", Email: "ada@example.com"})
	sess.Set(SessionKeyLanguage, "sv")
	sess.AddFlash(FlashMessage{Kind: "success", Message: "welcome"})

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))
	cookie := sessionCookie(t, res, "dd_session")
	assert.Equal(t, sm.CookieValue(sess.ID), cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.True(t, mr.Exists("session:"+sess.ID))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookie)
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.True(t, loaded.IsAuthenticated())
	assert.Equal(t, "tok", loaded.Token())
	assert.Equal(t, "Ada", loaded.User().Name)
	assert.Equal(t, "sv", loaded.Get(SessionKeyLanguage))

	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "welcome", flash.Message)
	assert.Nil(t, loaded.PopFlash())
}

func TestLoadRejectsTamperedCookie(t *testing.T) {
	sm, _ := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SignIn("tok", UserProfile{Name: "Ada"})
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), req, sess))

	for _, value := range []string{sess.ID, sess.ID + ".forged", "", "."} {
		forged := httptest.NewRequest(http.MethodGet, "/", nil)
		forged.AddCookie(&http.Cookie{Name: "dd_session", Value: value})
		loaded, err := sm.Load(ctx, forged)
		require.NoError(t, err)
		assert.NotEqual(t, sess.ID, loaded.ID, "cookie %q", value)
		assert.False(t, loaded.IsAuthenticated())
	}
}

func TestLoadExpiredSessionStartsFresh(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := sm.Load(ctx, req)
	sess.Set(SessionKeyLanguage, "sv")
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))

	mr.FastForward(2 * time.Hour)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(sessionCookie(t, res, "dd_session"))
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, loaded.ID)
	assert.Empty(t, loaded.Get(SessionKeyLanguage))
}

func TestDestroyRemovesSession(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := sm.Load(ctx, req)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), req, sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	sm.Destroy(sess)
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))
	assert.False(t, mr.Exists("session:"+sess.ID))
	assert.Equal(t, -1, sessionCookie(t, res, "dd_session").MaxAge)
}

func TestSignOutKeepsLanguage(t *testing.T) {
	sess := &Session{ID: "s", values: map[string]string{}}
	sess.Set(SessionKeyLanguage, "sv")
	sess.SignIn("tok", UserProfile{Name: "Ada"})
	sess.SignOut()
	assert.False(t, sess.IsAuthenticated())
	assert.Empty(t, sess.User().Name)
	assert.Equal(t, "sv", sess.Get(SessionKeyLanguage))
}

func TestGetJSONMalformed(t *testing.T) {
	sess := &Session{ID: "s", values: map[string]string{"x": "{"}}
	var dest map[string]string
	assert.False(t, sess.GetJSON("x", &dest))
	assert.False(t, sess.GetJSON("missing", &dest))
}
