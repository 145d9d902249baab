// Package session issues, validates and rotates the tokens that make up a
// login session: a short-lived signed access token (JWT, subject = user
// email) and a long-lived opaque refresh token stored on the user row.
//
// Each user has at most one active refresh token; every login and every
// rotation overwrites it, so a rotation immediately invalidates the previous
// token with no grace window. The refresh token's lifetime is enforced by
// cookie expiry only; the server keeps no issuance timestamp for it, so a
// stolen cookie stays usable until the next rotation or logout. That gap is
// inherited from the original design and left as is.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"readre/models"
)

// refreshTokenBytes gives 256 bits of entropy per token.
const refreshTokenBytes = 32

// Manager is the session/token core. It never mutates the store except in
// Rotate; Resolve is read-only so callers can reissue tokens themselves.
type Manager struct {
	store     UserStore
	signer    Signer
	accessTTL time.Duration
	now       func() time.Time
}

func NewManager(store UserStore, signer Signer, accessTTL time.Duration) *Manager {
	return &Manager{store: store, signer: signer, accessTTL: accessTTL, now: time.Now}
}

// WithClock overrides the time source. Tests use this to pin expiry.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Mint produces a signed access token for the given email with expiry
// now + access TTL.
func (m *Manager) Mint(email string) (string, error) {
	return m.signer.Sign(email, m.now(), m.accessTTL)
}

// MintRefresh produces a new opaque refresh token. It is pure randomness,
// derivable from neither the user nor any prior token.
func (m *Manager) MintRefresh() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Resolve maps the presented credentials to a user. The access token is
// tried first; if it is absent or fails verification the refresh token is
// matched against the store. Every failure is ErrUnauthenticated so callers
// cannot tell a malformed token from an orphaned one.
//
// When resolution succeeded via the refresh token the caller is expected to
// mint and reissue a fresh access token in its response; Resolve itself
// never writes to the store.
func (m *Manager) Resolve(ctx context.Context, accessToken, refreshToken string) (*models.User, error) {
	if accessToken == "" && refreshToken == "" {
		return nil, ErrUnauthenticated
	}
	if accessToken != "" {
		email, err := m.signer.Verify(accessToken, m.now())
		if err == nil {
			user, err := m.store.FindByEmail(ctx, email)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil, ErrUnauthenticated
				}
				return nil, err
			}
			return user, nil
		}
		// fall through to the refresh token, if any
	}
	if refreshToken != "" {
		user, err := m.store.FindByRefreshToken(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrUnauthenticated
			}
			return nil, err
		}
		return user, nil
	}
	return nil, ErrUnauthenticated
}

// Rotate exchanges a refresh token for a fresh access/refresh pair and
// invalidates the old refresh token. The store update is conditional on the
// old value still being current, so rotation is single-use even under
// concurrent calls; a store failure leaves the old token valid.
func (m *Manager) Rotate(ctx context.Context, oldRefresh string) (*models.User, string, string, error) {
	user, err := m.store.FindByRefreshToken(ctx, oldRefresh)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", "", ErrInvalidRefreshToken
		}
		return nil, "", "", err
	}
	accessToken, err := m.Mint(user.Email)
	if err != nil {
		return nil, "", "", err
	}
	newRefresh, err := m.MintRefresh()
	if err != nil {
		return nil, "", "", err
	}
	if err := m.store.RotateRefreshToken(ctx, user.ID, oldRefresh, newRefresh); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, "", "", ErrInvalidRefreshToken
		}
		return nil, "", "", err
	}
	user.RefreshToken = &newRefresh
	return user, accessToken, newRefresh, nil
}
