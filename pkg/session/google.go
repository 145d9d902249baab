package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"readre/models"
)

const (
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	providerTimeout   = 5 * time.Second
)

// GoogleUser is the slice of the userinfo response we care about. Google
// returns more fields; we only decode what we persist.
type GoogleUser struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleVerifier exchanges a Google access token for the user's verified
// profile by calling the userinfo endpoint. The underlying client is pooled
// and reused across calls; each call is bounded by the client timeout.
type GoogleVerifier struct {
	endpoint string
	client   *http.Client
}

func NewGoogleVerifier() *GoogleVerifier {
	return &GoogleVerifier{
		endpoint: googleUserinfoURL,
		client:   &http.Client{Timeout: providerTimeout},
	}
}

// NewGoogleVerifierWithEndpoint points the verifier at a different userinfo
// URL. Tests use this with an httptest server.
func NewGoogleVerifierWithEndpoint(endpoint string) *GoogleVerifier {
	v := NewGoogleVerifier()
	v.endpoint = endpoint
	return v
}

// Userinfo fetches the profile behind providerToken. Failures map onto the
// session error kinds: unreachable provider, rejected token, or a payload
// with no email.
func (v *GoogleVerifier) Userinfo(ctx context.Context, providerToken string) (*GoogleUser, error) {
	// oauth2.NewClient attaches the bearer token to every request and
	// reuses v.client's transport. It does not inherit the base client's
	// Timeout, so the bound is re-applied on the wrapper.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.client)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: providerToken}))
	client.Timeout = v.client.Timeout

	resp, err := client.Get(v.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProviderRejected, resp.StatusCode)
	}

	var info GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	if info.Email == "" {
		return nil, ErrMissingEmail
	}
	return &info, nil
}

// Bridge translates a third-party identity assertion into a local session:
// verify against the provider, upsert the user, mint both tokens, persist
// the refresh token.
type Bridge struct {
	verifier *GoogleVerifier
	store    UserStore
	manager  *Manager
}

func NewBridge(verifier *GoogleVerifier, store UserStore, manager *Manager) *Bridge {
	return &Bridge{verifier: verifier, store: store, manager: manager}
}

// Login verifies providerToken and returns the user with a fresh
// access/refresh token pair. A first-time email creates the user; a known
// email gets its name and picture overwritten with the provider's latest
// values. The new refresh token is persisted before returning, so the
// caller may hand both tokens straight to the client.
func (b *Bridge) Login(ctx context.Context, providerToken string) (*models.User, string, string, error) {
	info, err := b.verifier.Userinfo(ctx, providerToken)
	if err != nil {
		return nil, "", "", err
	}

	user, err := b.store.FindByEmail(ctx, info.Email)
	switch {
	case err == nil:
		// profile sync on every login
		user.Name = info.Name
		if info.Picture != "" {
			user.Picture = &info.Picture
		} else {
			user.Picture = nil
		}
	case errors.Is(err, ErrNotFound):
		user, err = b.createUser(ctx, info)
		if err != nil {
			return nil, "", "", err
		}
	default:
		return nil, "", "", err
	}

	accessToken, err := b.manager.Mint(user.Email)
	if err != nil {
		return nil, "", "", err
	}
	refreshToken, err := b.manager.MintRefresh()
	if err != nil {
		return nil, "", "", err
	}
	user.RefreshToken = &refreshToken
	if err := b.store.Update(ctx, user); err != nil {
		return nil, "", "", err
	}
	return user, accessToken, refreshToken, nil
}

// createUser inserts a user for a never-seen email. The username is the
// display name lowercased with spaces removed, falling back to the email's
// local part, with a numeric suffix when the name is already taken.
func (b *Bridge) createUser(ctx context.Context, info *GoogleUser) (*models.User, error) {
	base := usernameFor(info)
	for attempt := 0; attempt < 10; attempt++ {
		username := base
		if attempt > 0 {
			username = fmt.Sprintf("%s%d", base, attempt+1)
		}
		user := &models.User{
			Email:    info.Email,
			Name:     info.Name,
			Username: username,
		}
		if info.Picture != "" {
			user.Picture = &info.Picture
		}
		err := b.store.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
		// conflict can also mean the email itself was created concurrently
		if existing, ferr := b.store.FindByEmail(ctx, info.Email); ferr == nil {
			return existing, nil
		}
	}
	return nil, ErrConflict
}

func usernameFor(info *GoogleUser) string {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(info.Name), " ", ""))
	if name != "" {
		return name
	}
	if at := strings.IndexByte(info.Email, '@'); at > 0 {
		return strings.ToLower(info.Email[:at])
	}
	return strings.ToLower(info.Email)
}
