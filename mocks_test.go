package userapi_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	userapi "github.com/goliatone/go-user-api"
)

// memoryUsers is an in-memory Users double mirroring the store contract:
// id allocation, unique email, affected-count delete.
type memoryUsers struct {
	mu      sync.Mutex
	records map[uuid.UUID]*userapi.User
}

var _ userapi.Users = (*memoryUsers)(nil)

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{records: map[uuid.UUID]*userapi.User{}}
}

func (m *memoryUsers) Create(_ context.Context, record *userapi.User) (*userapi.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.records {
		if u.Email == record.Email {
			return nil, userapi.ErrEmailTaken
		}
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := time.Now()
	record.CreatedAt = &now
	record.UpdatedAt = &now

	clone := *record
	m.records[record.ID] = &clone

	return record, nil
}

func (m *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*userapi.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}

	clone := *record
	return &clone, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*userapi.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.records {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}

	return nil, nil
}

func (m *memoryUsers) Update(_ context.Context, record *userapi.User) (*userapi.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, u := range m.records {
		if id != record.ID && u.Email == record.Email {
			return nil, userapi.ErrEmailTaken
		}
	}

	now := time.Now()
	record.UpdatedAt = &now

	clone := *record
	m.records[record.ID] = &clone

	return record, nil
}

func (m *memoryUsers) DeleteByID(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return 0, nil
	}

	delete(m.records, id)
	return 1, nil
}

func testConfig() *userapi.EnvConfig {
	return &userapi.EnvConfig{
		Port:            "3000",
		SigningKey:      "test-signing-key",
		TokenExpiration: time.Hour,
		Issuer:          "go-user-api-test",
		ContextKey:      "user",
		TokenLookup:     "header:Authorization",
		AuthScheme:      "Bearer",
	}
}
