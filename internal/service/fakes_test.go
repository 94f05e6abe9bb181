package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/repository"
	"cookiejar/creator/internal/security"
	"cookiejar/creator/internal/storage"
)

var errStoreDown = errors.New("store unavailable")

func fastHash(password string) ([]byte, error) {
	return security.HashPasswordWithParams(password, security.Argon2Params{
		Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16,
	})
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
	writeErr error
}

func newMemProfiles(profiles ...models.Profile) *memProfiles {
	m := &memProfiles{profiles: map[string]models.Profile{}}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *memProfiles) Create(_ context.Context, profile models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if strings.EqualFold(p.Email, profile.Email) {
			return repository.ErrEmailTaken
		}
	}
	m.profiles[profile.ID] = profile
	return nil
}

func (m *memProfiles) GetByID(_ context.Context, id string) (models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return models.Profile{}, repository.ErrProfileNotFound
	}
	return p, nil
}

func (m *memProfiles) FindByEmail(_ context.Context, email string) (models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return models.Profile{}, repository.ErrProfileNotFound
}

func (m *memProfiles) BeginEnrollment(_ context.Context, id string) (models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return models.Profile{}, repository.ErrProfileNotFound
	}
	if !p.IsCreator {
		now := time.Now()
		p.IsCreator = true
		p.CreatorStatus = models.CreatorStatusUser
		if p.CreatorJoinedAt == nil {
			p.CreatorJoinedAt = &now
		}
		m.profiles[id] = p
	}
	return p, nil
}

func (m *memProfiles) SubmitApplication(_ context.Context, id string, app models.CreatorApplication) (models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return models.Profile{}, m.writeErr
	}
	p, ok := m.profiles[id]
	if !ok {
		return models.Profile{}, repository.ErrProfileNotFound
	}
	if p.IsCreator && p.CreatorStatus != models.CreatorStatusUser {
		return models.Profile{}, repository.ErrApplicationAlreadySubmitted
	}
	now := time.Now()
	p.IsCreator = true
	p.CreatorStatus = models.CreatorStatusPending
	p.CreatorBio = app.Bio
	years := app.YearsExperience
	p.YearsExperience = &years
	p.PortfolioURL = app.PortfolioURL
	p.Twitter = app.Twitter
	p.YouTube = app.YouTube
	p.Itchio = app.Itchio
	p.CreatorApplicationSubmittedAt = &now
	m.profiles[id] = p
	return p, nil
}

func (m *memProfiles) UpdateSettings(_ context.Context, id string, s models.ProfileSettings) (models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return models.Profile{}, repository.ErrProfileNotFound
	}
	if s.Username != nil && *s.Username != "" {
		p.Username = *s.Username
	}
	p.CreatorBio = applyOptional(p.CreatorBio, s.Bio)
	p.Twitter = applyOptional(p.Twitter, s.Twitter)
	p.YouTube = applyOptional(p.YouTube, s.YouTube)
	p.Itchio = applyOptional(p.Itchio, s.Itchio)
	m.profiles[id] = p
	return p, nil
}

func applyOptional(current, next *string) *string {
	if next == nil {
		return current
	}
	if *next == "" {
		return nil
	}
	return next
}

func (m *memProfiles) UpdatePassword(_ context.Context, id string, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.PasswordHash = hash
	m.profiles[id] = p
	return nil
}

func (m *memProfiles) ListByStatus(_ context.Context, status models.CreatorStatus, limit, offset int) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Profile
	for _, p := range m.profiles {
		if p.IsCreator && p.CreatorStatus == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memGames struct {
	mu        sync.Mutex
	games     map[string]models.Game
	createErr error
	lastLimit int
}

func newMemGames(games ...models.Game) *memGames {
	m := &memGames{games: map[string]models.Game{}}
	for _, g := range games {
		m.games[g.ID] = g
	}
	return m
}

func (m *memGames) Create(_ context.Context, game models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.games[game.ID] = game
	return nil
}

func (m *memGames) GetByID(_ context.Context, id string) (models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return models.Game{}, repository.ErrGameNotFound
	}
	return g, nil
}

func (m *memGames) ListByCreator(_ context.Context, creatorID string, filter models.GameFilter, limit, offset int) ([]models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	var out []models.Game
	for _, g := range m.games {
		if g.CreatorID != creatorID {
			continue
		}
		if filter.ReviewStatus != "" && g.ReviewStatus != filter.ReviewStatus {
			continue
		}
		q := strings.ToLower(filter.Query)
		if q != "" && !strings.Contains(strings.ToLower(g.Title), q) && !strings.Contains(strings.ToLower(g.Description), q) {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memGames) Update(_ context.Context, id, creatorID string, u models.GameUpdate) (models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok || g.CreatorID != creatorID {
		return models.Game{}, repository.ErrGameNotFound
	}
	if u.Title != nil {
		g.Title = *u.Title
	}
	if u.Description != nil {
		g.Description = *u.Description
	}
	if u.Category != nil {
		g.Category = *u.Category
	}
	if u.Version != nil {
		g.Version = *u.Version
	}
	if u.AgeRating != nil {
		g.AgeRating = u.AgeRating
	}
	m.games[id] = g
	return g, nil
}

func (m *memGames) CompleteUpload(_ context.Context, id string, checksum []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok || g.UploadStatus != models.UploadStatusUploading {
		return repository.ErrGameNotFound
	}
	g.UploadStatus = models.UploadStatusProcessing
	g.Checksum = checksum
	m.games[id] = g
	return nil
}

func (m *memGames) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return repository.ErrGameNotFound
	}
	delete(m.games, id)
	return nil
}

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failKey string
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memObjects) Bucket() string { return "games" }

func (m *memObjects) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) (storage.ObjectInfo, error) {
	if m.failKey != "" && strings.HasSuffix(key, m.failKey) {
		return storage.ObjectInfo{}, errStoreDown
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return storage.ObjectInfo{Key: key, Size: int64(len(data)), ContentType: contentType}, nil
}

func (m *memObjects) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memObjects) PublicURL(key string) string {
	return storage.PublicURL("https://cdn.test", "games", key)
}

type memQueue struct {
	mu    sync.Mutex
	tasks []map[string]any
	err   error
}

func (q *memQueue) Enqueue(_ context.Context, values map[string]any) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.tasks = append(q.tasks, values)
	return "1-0", nil
}
