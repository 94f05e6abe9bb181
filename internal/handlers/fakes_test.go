package handlers

import (
	"context"
	"io"
	"sync"
	"time"

	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/repository"
	"cookiejar/creator/internal/storage"
)

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
}

func (m *memProfiles) Create(_ context.Context, profile models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.Email == profile.Email {
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
		if p.Email == email {
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
		p.IsCreator = true
		p.CreatorStatus = models.CreatorStatusUser
		m.profiles[id] = p
	}
	return p, nil
}

func (m *memProfiles) SubmitApplication(_ context.Context, id string, app models.CreatorApplication) (models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return models.Profile{}, repository.ErrProfileNotFound
	}
	if p.IsCreator && p.CreatorStatus != models.CreatorStatusUser {
		return models.Profile{}, repository.ErrApplicationAlreadySubmitted
	}
	now := time.Now()
	years := app.YearsExperience
	p.IsCreator = true
	p.CreatorStatus = models.CreatorStatusPending
	p.YearsExperience = &years
	p.CreatorBio = app.Bio
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
	if s.Username != nil {
		p.Username = *s.Username
	}
	if s.Bio != nil {
		p.CreatorBio = s.Bio
	}
	m.profiles[id] = p
	return p, nil
}

func (m *memProfiles) UpdatePassword(_ context.Context, id string, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[id]
	p.PasswordHash = hash
	m.profiles[id] = p
	return nil
}

func (m *memProfiles) ListByStatus(_ context.Context, status models.CreatorStatus, _, _ int) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Profile
	for _, p := range m.profiles {
		if p.IsCreator && p.CreatorStatus == status {
			out = append(out, p)
		}
	}
	return out, nil
}

type memGames struct {
	mu    sync.Mutex
	games map[string]models.Game
}

func (m *memGames) Create(_ context.Context, game models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *memGames) ListByCreator(_ context.Context, creatorID string, _ models.GameFilter, _, _ int) ([]models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Game
	for _, g := range m.games {
		if g.CreatorID == creatorID {
			out = append(out, g)
		}
	}
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
	m.games[id] = g
	return g, nil
}

func (m *memGames) CompleteUpload(_ context.Context, id string, checksum []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.games[id]
	g.UploadStatus = models.UploadStatusProcessing
	g.Checksum = checksum
	m.games[id] = g
	return nil
}

func (m *memGames) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memObjects) Bucket() string { return "games" }

func (m *memObjects) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
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
}

func (q *memQueue) Enqueue(_ context.Context, values map[string]any) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, values)
	return "1-0", nil
}

type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memRevocations) Revoke(_ context.Context, sessionID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[sessionID] = true
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[sessionID], nil
}
