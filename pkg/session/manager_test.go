package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readre/models"
)

// fakeStore is an in-memory UserStore for manager and bridge tests.
type fakeStore struct {
	mu    sync.Mutex
	users map[uint]*models.User
	seq   uint

	failAll bool // simulate an unavailable store
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[uint]*models.User{}}
}

func (s *fakeStore) put(u models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	u.ID = s.seq
	s.users[u.ID] = &u
	return cloneUser(&u)
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.Picture != nil {
		p := *u.Picture
		c.Picture = &p
	}
	if u.RefreshToken != nil {
		r := *u.RefreshToken
		c.RefreshToken = &r
	}
	return &c
}

func (s *fakeStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, ErrStoreUnavailable
	}
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) FindByRefreshToken(_ context.Context, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, ErrStoreUnavailable
	}
	for _, u := range s.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return ErrStoreUnavailable
	}
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return ErrConflict
		}
	}
	s.seq++
	user.ID = s.seq
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *fakeStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return ErrStoreUnavailable
	}
	if _, ok := s.users[user.ID]; !ok {
		return ErrNotFound
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *fakeStore) RotateRefreshToken(_ context.Context, userID uint, old, replacement string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return ErrStoreUnavailable
	}
	u, ok := s.users[userID]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != old {
		return ErrConflict
	}
	n := replacement
	u.RefreshToken = &n
	return nil
}

func testManager(store UserStore, now time.Time) *Manager {
	signer := NewHS256Signer([]byte("test-secret"))
	return NewManager(store, signer, 30*time.Minute).WithClock(func() time.Time { return now })
}

func TestMintAndResolveRoundTrip(t *testing.T) {
	store := newFakeStore()
	store.put(models.User{Email: "a@x.com", Name: "A", Username: "a"})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := testManager(store, now)

	token, err := m.Mint("a@x.com")
	require.NoError(t, err)

	user, err := m.Resolve(context.Background(), token, "")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestResolveExpiredAccessToken(t *testing.T) {
	store := newFakeStore()
	store.put(models.User{Email: "a@x.com", Username: "a"})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := testManager(store, now)

	token, err := m.Mint("a@x.com")
	require.NoError(t, err)

	// move the clock past the 30 minute TTL
	m.WithClock(func() time.Time { return now.Add(31 * time.Minute) })
	_, err = m.Resolve(context.Background(), token, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveNoCredentials(t *testing.T) {
	m := testManager(newFakeStore(), time.Now())
	_, err := m.Resolve(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveOrphanedToken(t *testing.T) {
	// well-formed token for an email with no user row must look exactly
	// like any other failure
	m := testManager(newFakeStore(), time.Now())
	token, err := m.Mint("ghost@x.com")
	require.NoError(t, err)
	_, err = m.Resolve(context.Background(), token, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveFallsBackToRefreshToken(t *testing.T) {
	store := newFakeStore()
	refresh := "stored-refresh-token"
	store.put(models.User{Email: "a@x.com", Username: "a", RefreshToken: &refresh})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := testManager(store, now)

	expired, err := m.Mint("a@x.com")
	require.NoError(t, err)

	m.WithClock(func() time.Time { return now.Add(time.Hour) })
	user, err := m.Resolve(context.Background(), expired, refresh)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	_, err = m.Resolve(context.Background(), "", "wrong-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestMintRefreshIsOpaqueAndUnique(t *testing.T) {
	m := testManager(newFakeStore(), time.Now())
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := m.MintRefresh()
		require.NoError(t, err)
		// 32 bytes base64url without padding
		assert.Len(t, token, 43)
		assert.False(t, seen[token], "refresh token repeated")
		seen[token] = true
	}
}

func TestRotateIsSingleUse(t *testing.T) {
	store := newFakeStore()
	old := "original-refresh"
	store.put(models.User{Email: "a@x.com", Username: "a", RefreshToken: &old})
	m := testManager(store, time.Now())

	user, access, newRefresh, err := m.Rotate(context.Background(), old)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEmpty(t, access)
	assert.NotEqual(t, old, newRefresh)

	// replaying the rotated-away token fails permanently
	_, _, _, err = m.Rotate(context.Background(), old)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// the new token still works
	_, _, _, err = m.Rotate(context.Background(), newRefresh)
	assert.NoError(t, err)
}

func TestRotateUnknownToken(t *testing.T) {
	m := testManager(newFakeStore(), time.Now())
	_, _, _, err := m.Rotate(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRotateStoreConflictMapsToInvalidToken(t *testing.T) {
	// Two callers race: both read the same old token, one rotates first.
	// The loser's conditional update misses and it must see the same error
	// as an unknown token.
	store := newFakeStore()
	old := "contended-refresh"
	u := store.put(models.User{Email: "a@x.com", Username: "a", RefreshToken: &old})
	m := testManager(store, time.Now())

	require.NoError(t, store.RotateRefreshToken(context.Background(), u.ID, old, "winner"))

	_, _, _, err := m.Rotate(context.Background(), old)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRotateStoreFailureLeavesOldTokenValid(t *testing.T) {
	store := newFakeStore()
	old := "stable-refresh"
	store.put(models.User{Email: "a@x.com", Username: "a", RefreshToken: &old})
	m := testManager(store, time.Now())

	// reads go through, the persist step fails
	store2 := &rotateFailingStore{fakeStore: store}
	m2 := testManager(store2, time.Now())
	_, _, _, err := m2.Rotate(context.Background(), old)
	require.ErrorIs(t, err, ErrStoreUnavailable)

	// the old token still resolves
	user, err := m.Resolve(context.Background(), "", old)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
}

// rotateFailingStore lets reads through but fails the rotation write.
type rotateFailingStore struct {
	*fakeStore
}

func (s *rotateFailingStore) RotateRefreshToken(context.Context, uint, string, string) error {
	return fmt.Errorf("%w: connection reset", ErrStoreUnavailable)
}
