package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cashora/backend/internal/audit"
	"github.com/cashora/backend/internal/events"
	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/notify"
	"github.com/cashora/backend/internal/store"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	demoPassword  = "password123"
	adminPassword = "admin12345"
)

var testAuthConfig = AuthConfig{
	SecretKey: "test-secret",
	Expiry:    time.Hour,
	Argon2: Argon2Params{
		Time:       1,
		Memory:     1024,
		Threads:    1,
		KeyLength:  32,
		SaltLength: 16,
	},
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.StatusEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// recordingMailer keeps every email it is handed; addresses in fail are
// refused.
type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Email
	fail map[string]bool
}

func (m *recordingMailer) Send(ctx context.Context, email notify.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail[email.To] {
		return errors.New("smtp: mailbox unavailable")
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *recordingMailer) Sent() []notify.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Email(nil), m.sent...)
}

type fakeCollector struct {
	mu       sync.Mutex
	created  map[string]int
	decided  map[string]int
	topics   map[string]int
	pending  map[string]int
	emailsOK int
}

func newFakeCollector() *fakeCollector {
	return &fakeCollector{
		created: map[string]int{},
		decided: map[string]int{},
		topics:  map[string]int{},
		pending: map[string]int{},
	}
}

func (c *fakeCollector) RequestCreated(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created[kind]++
}

func (c *fakeCollector) RequestDecided(kind, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decided[kind+":"+status]++
}

func (c *fakeCollector) ChatMessage(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics[topic]++
}

func (c *fakeCollector) SetPending(kind string, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[kind] = count
}

func (c *fakeCollector) EmailSent(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if success {
		c.emailsOK++
	}
}

// testEnv is a seeded store with every collaborator a service needs.
type testEnv struct {
	store     *store.MemoryStore
	settings  *SettingsService
	mailer    *recordingMailer
	notifier  *notify.Notifier
	publisher *MockPublisher
	audit     *audit.Logger
	metrics   *fakeCollector
	auth      *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := store.NewMemoryStore()
	auth := NewAuthService(st, nil, testAuthConfig)

	demoHash, err := auth.HashPassword(demoPassword)
	require.NoError(t, err)
	adminHash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)
	require.NoError(t, store.Seed(st, store.SeedOptions{
		AdminEmail:        "admin@cashora.com",
		AdminPasswordHash: adminHash,
		DemoPasswordHash:  demoHash,
	}))

	auditLog := audit.NewLogger(logging.NewNoOpLogger())
	settings, err := NewSettingsService(context.Background(), store.NewMemorySettingsStore(), models.DefaultSystemSettings(), auditLog)
	require.NoError(t, err)

	collector := newFakeCollector()
	mailer := &recordingMailer{fail: map[string]bool{}}
	publisher := &MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &testEnv{
		store:     st,
		settings:  settings,
		mailer:    mailer,
		notifier:  notify.NewNotifier(mailer, "noreply@cashora.com", collector),
		publisher: publisher,
		audit:     auditLog,
		metrics:   collector,
		auth:      auth,
	}
}

func (e *testEnv) requests() *RequestService {
	return NewRequestService(e.store, e.settings, e.notifier, e.publisher, e.audit, e.metrics)
}

func (e *testEnv) registrations() *RegistrationService {
	return NewRegistrationService(e.store, e.notifier, e.publisher, e.audit)
}

// approveJane turns the seeded registration into an active user.
func (e *testEnv) approveJane(t *testing.T) models.User {
	t.Helper()
	u, err := e.store.PromoteRegistration(2)
	require.NoError(t, err)
	return u
}

func float64Ptr(v float64) *float64 { return &v }
