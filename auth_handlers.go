package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"readre/models"
	"readre/pkg/session"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

// authMiddleware resolves the request to a user via the session manager
// (access cookie or bearer header first, refresh cookie as fallback) and
// stores it in the gin context.
func authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		access, _ := c.Cookie(accessCookie)
		if access == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				access = h[len("Bearer "):]
			}
		}
		refresh, _ := c.Cookie(refreshCookie)

		user, err := sessions.Resolve(c.Request.Context(), access, refresh)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			c.Abort()
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

// currentUser fetches the authenticated user placed in the context by
// authMiddleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, _ := c.Get("user")
	user, ok := v.(*models.User)
	return user, ok
}

// setAuthCookie writes an HTTP-only cookie with the transport attributes
// the frontend depends on. Deletion must use the exact same attributes or
// browsers keep the stale cookie, hence clearAuthCookie going through here.
func setAuthCookie(c *gin.Context, name, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if cfg.Production {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Production,
		SameSite: sameSite,
	})
}

func clearAuthCookie(c *gin.Context, name string) {
	setAuthCookie(c, name, "", -1)
}

func setSessionCookies(c *gin.Context, accessToken, refreshToken string) {
	setAuthCookie(c, accessCookie, accessToken, int(cfg.AccessTTL().Seconds()))
	setAuthCookie(c, refreshCookie, refreshToken, int(cfg.RefreshTTL().Seconds()))
}

// googleAuthHandler exchanges a Google access token for a local session.
func googleAuthHandler(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, accessToken, refreshToken, err := bridge.Login(c.Request.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrProviderUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to connect to Google"})
		case errors.Is(err, session.ErrProviderRejected):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to verify Google token"})
		case errors.Is(err, session.ErrMissingEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email not provided by Google"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
		}
		return
	}

	setSessionCookies(c, accessToken, refreshToken)
	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"token_type":   "bearer",
		"user":         user,
	})
}

// meHandler returns the authenticated user's profile and reissues the
// access cookie, giving sessions sliding expiry as long as the refresh
// token stays valid.
func meHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing user"})
		return
	}
	accessToken, err := sessions.Mint(user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	setAuthCookie(c, accessCookie, accessToken, int(cfg.AccessTTL().Seconds()))
	c.JSON(http.StatusOK, user)
}

// refreshHandler rotates the refresh token: the old one stops working the
// moment the new pair is issued.
func refreshHandler(c *gin.Context) {
	refresh, _ := c.Cookie(refreshCookie)
	if refresh == "" {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.ShouldBindJSON(&req); err == nil {
			refresh = req.RefreshToken
		}
	}
	if refresh == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token missing"})
		return
	}

	user, accessToken, newRefresh, err := sessions.Rotate(c.Request.Context(), refresh)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}

	setSessionCookies(c, accessToken, newRefresh)
	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"token_type":   "bearer",
		"user":         user,
	})
}

func logoutHandler(c *gin.Context) {
	clearAuthCookie(c, accessCookie)
	clearAuthCookie(c, refreshCookie)
	c.JSON(http.StatusOK, gin.H{"message": "successfully logged out"})
}
