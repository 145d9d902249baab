package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"readre/models"
	"readre/pkg/session"
)

// setupTestServer wires the whole app against a throwaway sqlite database
// and the given provider userinfo endpoint.
func setupTestServer(t *testing.T, providerURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var err error
	db, err = gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Blog{}, &models.Comment{}, &models.Like{}))

	cfg = Config{
		SecretKey:          "test-secret",
		AccessTokenMinutes: 30,
		RefreshTokenDays:   30,
	}
	store := session.NewGormStore(db)
	signer := session.NewHS256Signer([]byte(cfg.SecretKey))
	sessions = session.NewManager(store, signer, cfg.AccessTTL())
	bridge = session.NewBridge(session.NewGoogleVerifierWithEndpoint(providerURL), store, sessions)

	r := gin.New()
	setupRoutes(r)
	return r
}

// performRequest drives the engine with optional cookies.
func performRequest(r http.Handler, method, path string, body io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// responseCookie digs a named cookie out of the recorder's Set-Cookie
// headers; nil if absent.
func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	resp := http.Response{Header: rec.Header()}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// seedUser inserts a user directly and returns it with a valid access token.
func seedUser(t *testing.T, email, username string) (*models.User, string) {
	t.Helper()
	user := &models.User{Email: email, Name: username, Username: username}
	require.NoError(t, db.Create(user).Error)
	token, err := sessions.Mint(email)
	require.NoError(t, err)
	return user, token
}
