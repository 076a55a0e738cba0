package store

import (
	"context"
	"sync"

	"github.com/cashora/backend/internal/models"
)

// SettingsStore persists the SystemSettings record.
type SettingsStore interface {
	// Load returns models.ErrNotFound when nothing has been saved yet.
	Load(ctx context.Context) (models.SystemSettings, error)
	Save(ctx context.Context, settings models.SystemSettings) error
}

type MemorySettingsStore struct {
	mu       sync.Mutex
	settings *models.SystemSettings
}

func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{}
}

func (m *MemorySettingsStore) Load(ctx context.Context) (models.SystemSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settings == nil {
		return models.SystemSettings{}, models.ErrNotFound
	}
	return *m.settings, nil
}

func (m *MemorySettingsStore) Save(ctx context.Context, settings models.SystemSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = &settings
	return nil
}
