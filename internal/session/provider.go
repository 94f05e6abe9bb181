// Package session issues and resolves dashboard sessions. Resolution never
// fails loudly: anything short of a valid, unrevoked token resolves to an
// unauthenticated session.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"cookiejar/creator/internal/admission"
	"cookiejar/creator/internal/ids"
	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/security"
)

// RevocationStore remembers revoked session ids until their tokens expire.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// Session is a resolved session: the admission view plus the signed claims
// for handlers that need identity details.
type Session struct {
	admission.Session
	Token *security.SessionClaims
}

func (s Session) Authenticated() bool {
	return s.Status == admission.StatusAuthenticated && s.Token != nil
}

type Provider struct {
	secret         string
	ttl            time.Duration
	revocations    RevocationStore
	resolveTimeout time.Duration
	now            func() time.Time
	log            zerolog.Logger
}

type Option func(*Provider)

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func WithResolveTimeout(d time.Duration) Option {
	return func(p *Provider) { p.resolveTimeout = d }
}

func NewProvider(secret string, ttl time.Duration, revocations RevocationStore, log zerolog.Logger, opts ...Option) *Provider {
	p := &Provider{
		secret:         secret,
		ttl:            ttl,
		revocations:    revocations,
		resolveTimeout: 2 * time.Second,
		now:            time.Now,
		log:            log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) TTL() time.Duration { return p.ttl }

// Issue signs a fresh session for the profile's current state.
func (p *Provider) Issue(profile models.Profile) (string, *security.SessionClaims, error) {
	return p.sign(ids.New(), profile)
}

// Reissue refreshes the claim snapshot while keeping the session id, so a
// revocation of the old token also covers the new one.
func (p *Provider) Reissue(current *security.SessionClaims, profile models.Profile) (string, *security.SessionClaims, error) {
	if current == nil || current.UserID != profile.ID {
		return "", nil, errors.New("reissue: session does not belong to profile")
	}
	return p.sign(current.SessionID, profile)
}

func (p *Provider) sign(sessionID string, profile models.Profile) (string, *security.SessionClaims, error) {
	claims := security.SessionClaims{
		UserID:        profile.ID,
		SessionID:     sessionID,
		Email:         profile.Email,
		Name:          profile.Username,
		Role:          string(profile.Role),
		IsCreator:     profile.IsCreator,
		CreatorStatus: string(profile.CreatorStatus),
	}
	token, err := security.GenerateSessionToken(p.secret, claims, p.now(), p.ttl)
	if err != nil {
		return "", nil, err
	}
	parsed, err := security.ParseSessionToken(token, p.secret, p.parserOptions()...)
	if err != nil {
		return "", nil, fmt.Errorf("reparse issued token: %w", err)
	}
	return token, parsed, nil
}

// Resolve turns a raw token into a session. An empty token, a bad signature,
// an expired token, a revoked session or a failed revocation lookup all
// yield an unauthenticated session.
func (p *Provider) Resolve(ctx context.Context, token string) Session {
	if token == "" {
		return Session{}
	}

	claims, err := security.ParseSessionToken(token, p.secret, p.parserOptions()...)
	if err != nil {
		p.log.Debug().Err(err).Msg("session token rejected")
		return Session{}
	}

	status, err := models.ParseCreatorStatus(claims.CreatorStatus)
	if err != nil {
		p.log.Warn().Err(err).Str("user_id", claims.UserID).Msg("session carries unknown creator status")
		return Session{}
	}

	if p.revocations != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, p.resolveTimeout)
		defer cancel()
		revoked, err := p.revocations.IsRevoked(lookupCtx, claims.SessionID)
		if err != nil {
			p.log.Warn().Err(err).Str("session_id", claims.SessionID).Msg("revocation lookup failed")
			return Session{}
		}
		if revoked {
			return Session{}
		}
	}

	return Session{
		Session: admission.Session{
			Status: admission.StatusAuthenticated,
			Claims: admission.Claims{
				UserID:        claims.UserID,
				IsCreator:     claims.IsCreator,
				CreatorStatus: status,
			},
		},
		Token: claims,
	}
}

// Revoke invalidates a session for the rest of its lifetime.
func (p *Provider) Revoke(ctx context.Context, claims *security.SessionClaims) error {
	if claims == nil || p.revocations == nil {
		return nil
	}
	ttl := p.ttl
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(p.now())
	}
	if ttl <= 0 {
		return nil
	}
	return p.revocations.Revoke(ctx, claims.SessionID, ttl)
}

func (p *Provider) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{jwt.WithTimeFunc(p.now)}
}
