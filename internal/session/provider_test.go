package session

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookiejar/creator/internal/admission"
	"cookiejar/creator/internal/models"
)

type memoryRevocations struct {
	revoked map[string]time.Duration
	err     error
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: map[string]time.Duration{}}
}

func (m *memoryRevocations) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.revoked[sessionID] = ttl
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[sessionID]
	return ok, nil
}

func testProfile(status models.CreatorStatus) models.Profile {
	return models.Profile{
		ID:            "u1",
		Email:         "dev@example.com",
		Username:      "dev",
		Role:          models.UserRoleUser,
		IsCreator:     true,
		CreatorStatus: status,
	}
}

func TestIssueAndResolve(t *testing.T) {
	p := NewProvider("secret", time.Hour, newMemoryRevocations(), zerolog.Nop())

	token, claims, err := p.Issue(testProfile(models.CreatorStatusPending))
	require.NoError(t, err)
	require.NotEmpty(t, claims.SessionID)

	s := p.Resolve(context.Background(), token)
	require.True(t, s.Authenticated())
	assert.Equal(t, admission.Session{
		Status: admission.StatusAuthenticated,
		Claims: admission.Claims{UserID: "u1", IsCreator: true, CreatorStatus: models.CreatorStatusPending},
	}, s.Session)
	assert.Equal(t, "dev@example.com", s.Token.Email)
}

func TestResolveFailuresAreUnauthenticated(t *testing.T) {
	revocations := newMemoryRevocations()
	p := NewProvider("secret", time.Hour, revocations, zerolog.Nop())
	token, claims, err := p.Issue(testProfile(models.CreatorStatusApproved))
	require.NoError(t, err)

	other := NewProvider("other", time.Hour, nil, zerolog.Nop())

	assert.Equal(t, admission.StatusUnauthenticated, p.Resolve(context.Background(), "").Status)
	assert.Equal(t, admission.StatusUnauthenticated, p.Resolve(context.Background(), "not-a-jwt").Status)
	assert.Equal(t, admission.StatusUnauthenticated, other.Resolve(context.Background(), token).Status)

	require.NoError(t, p.Revoke(context.Background(), claims))
	assert.False(t, p.Resolve(context.Background(), token).Authenticated())
}

func TestResolveExpired(t *testing.T) {
	now := time.Now()
	p := NewProvider("secret", time.Hour, nil, zerolog.Nop(), WithClock(func() time.Time { return now }))
	token, _, err := p.Issue(testProfile(models.CreatorStatusApproved))
	require.NoError(t, err)

	later := NewProvider("secret", time.Hour, nil, zerolog.Nop(), WithClock(func() time.Time { return now.Add(2 * time.Hour) }))
	assert.False(t, later.Resolve(context.Background(), token).Authenticated())
}

func TestResolveRevocationLookupErrorDenies(t *testing.T) {
	revocations := newMemoryRevocations()
	p := NewProvider("secret", time.Hour, revocations, zerolog.Nop())
	token, _, err := p.Issue(testProfile(models.CreatorStatusApproved))
	require.NoError(t, err)

	revocations.err = errors.New("redis down")
	assert.Equal(t, admission.StatusUnauthenticated, p.Resolve(context.Background(), token).Status)
}

func TestReissueKeepsSessionID(t *testing.T) {
	p := NewProvider("secret", time.Hour, newMemoryRevocations(), zerolog.Nop())
	_, claims, err := p.Issue(testProfile(models.CreatorStatusUser))
	require.NoError(t, err)

	token, next, err := p.Reissue(claims, testProfile(models.CreatorStatusPending))
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID, next.SessionID)
	assert.Equal(t, models.CreatorStatusPending, p.Resolve(context.Background(), token).Session.Claims.CreatorStatus)

	stranger := testProfile(models.CreatorStatusPending)
	stranger.ID = "u2"
	_, _, err = p.Reissue(claims, stranger)
	assert.Error(t, err)
}

func TestRevokeUsesRemainingLifetime(t *testing.T) {
	now := time.Now()
	revocations := newMemoryRevocations()
	p := NewProvider("secret", time.Hour, revocations, zerolog.Nop(), WithClock(func() time.Time { return now }))
	_, claims, err := p.Issue(testProfile(models.CreatorStatusApproved))
	require.NoError(t, err)

	require.NoError(t, p.Revoke(context.Background(), claims))
	ttl := revocations.revoked[claims.SessionID]
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 1)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "", TokenFromRequest(req, "cookiejar_session"))

	req.AddCookie(NewCookie("cookiejar_session", "from-cookie", time.Hour, false))
	assert.Equal(t, "from-cookie", TokenFromRequest(req, "cookiejar_session"))

	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", TokenFromRequest(req, "cookiejar_session"))
}
