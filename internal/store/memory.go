package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cashora/backend/internal/models"
)

// MemoryStore keeps portal state in process memory. Users and
// registrations draw IDs from one sequence so an approved registration can
// keep its ID. Every read returns a copy.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[int]*models.User
	registrations map[int]*models.UserRegistration
	requests      map[int]*models.Request
	banks         map[int]*models.Bank
	nextPersonID  int
	nextRequestID int
	nextBankID    int
	now           func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[int]*models.User),
		registrations: make(map[int]*models.UserRegistration),
		requests:      make(map[int]*models.Request),
		banks:         make(map[int]*models.Bank),
		nextPersonID:  1,
		nextRequestID: 1,
		nextBankID:    1,
		now:           time.Now,
	}
}

// Users

func (s *MemoryStore) ListUsers() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Clone())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *MemoryStore) GetUser(id int) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	return u.Clone(), nil
}

// FindUser looks a non-deleted user up by email or username, case-insensitively.
func (s *MemoryStore) FindUser(login string) (models.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Status == models.UserStatusDeleted {
			continue
		}
		if strings.ToLower(u.Email) == login || strings.ToLower(u.Username) == login {
			return u.Clone(), nil
		}
	}
	return models.User{}, fmt.Errorf("user %q: %w", login, models.ErrNotFound)
}

func (s *MemoryStore) CreateUser(u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identityTakenLocked(u.Email, u.Username) {
		return models.User{}, models.ErrDuplicateUser
	}

	now := s.now()
	u.ID = s.nextPersonID
	s.nextPersonID++
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.AssignedBanks == nil {
		u.AssignedBanks = []int{}
	}

	stored := u.Clone()
	s.users[u.ID] = &stored
	return u.Clone(), nil
}

// UpdateUser applies fn to the stored user under the write lock. If fn
// fails the user is left unchanged.
func (s *MemoryStore) UpdateUser(id int, fn func(*models.User) error) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}

	draft := u.Clone()
	if err := fn(&draft); err != nil {
		return models.User{}, err
	}
	for _, bankID := range draft.AssignedBanks {
		if _, ok := s.banks[bankID]; !ok {
			return models.User{}, fmt.Errorf("bank %d: %w", bankID, models.ErrUnknownBank)
		}
	}
	draft.ID = id
	draft.UpdatedAt = s.now()
	s.users[id] = &draft
	return draft.Clone(), nil
}

func (s *MemoryStore) identityTakenLocked(email, username string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.ToLower(strings.TrimSpace(username))
	match := func(e, u string) bool {
		return (email != "" && strings.ToLower(e) == email) || (username != "" && strings.ToLower(u) == username)
	}
	for _, u := range s.users {
		if u.Status != models.UserStatusDeleted && match(u.Email, u.Username) {
			return true
		}
	}
	for _, r := range s.registrations {
		if match(r.Email, r.Username) {
			return true
		}
	}
	return false
}

// Registrations

func (s *MemoryStore) ListRegistrations() []models.UserRegistration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	regs := make([]models.UserRegistration, 0, len(s.registrations))
	for _, r := range s.registrations {
		regs = append(regs, *r)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].ID < regs[j].ID })
	return regs
}

func (s *MemoryStore) GetRegistration(id int) (models.UserRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.registrations[id]
	if !ok {
		return models.UserRegistration{}, fmt.Errorf("registration %d: %w", id, models.ErrNotFound)
	}
	return *r, nil
}

func (s *MemoryStore) CreateRegistration(r models.UserRegistration) (models.UserRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identityTakenLocked(r.Email, r.Username) {
		return models.UserRegistration{}, models.ErrDuplicateUser
	}

	r.ID = s.nextPersonID
	s.nextPersonID++
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	stored := r
	s.registrations[r.ID] = &stored
	return r, nil
}

// PromoteRegistration removes the registration and inserts the user built
// from it in one step.
func (s *MemoryStore) PromoteRegistration(id int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registrations[id]
	if !ok {
		return models.User{}, fmt.Errorf("registration %d: %w", id, models.ErrNotFound)
	}

	u := r.ToUser(s.now())
	delete(s.registrations, id)
	s.users[u.ID] = &u
	return u.Clone(), nil
}

// DeleteRegistration discards a registration and returns what was removed.
func (s *MemoryStore) DeleteRegistration(id int) (models.UserRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registrations[id]
	if !ok {
		return models.UserRegistration{}, fmt.Errorf("registration %d: %w", id, models.ErrNotFound)
	}
	delete(s.registrations, id)
	return *r, nil
}

// Requests

func (s *MemoryStore) CreateRequest(r models.Request) (models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	r.ID = s.nextRequestID
	s.nextRequestID++
	r.Status = models.RequestStatusPending
	if r.Date == "" {
		r.Date = now.Format(models.DateLayout)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	stored := r.Clone()
	s.requests[r.ID] = &stored
	return r.Clone(), nil
}

func (s *MemoryStore) GetRequest(id int) (models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return models.Request{}, fmt.Errorf("request %d: %w", id, models.ErrNotFound)
	}
	return r.Clone(), nil
}

// ListRequests returns requests in ID order; an empty kind means all kinds.
func (s *MemoryStore) ListRequests(kind models.RequestKind) []models.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Request, 0, len(s.requests))
	for _, r := range s.requests {
		if kind == "" || r.Kind == kind {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateRequest applies fn under the write lock. A failing fn leaves the
// request untouched, which is what keeps Transition's guard race-free.
func (s *MemoryStore) UpdateRequest(id int, fn func(*models.Request) error) (models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return models.Request{}, fmt.Errorf("request %d: %w", id, models.ErrNotFound)
	}

	draft := r.Clone()
	if err := fn(&draft); err != nil {
		return models.Request{}, err
	}
	draft.ID = id
	s.requests[id] = &draft
	return draft.Clone(), nil
}

// Banks

// ListBanks returns banks with AssignedUsers counted from non-deleted users.
func (s *MemoryStore) ListBanks() []models.Bank {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := s.bankCountsLocked()
	banks := make([]models.Bank, 0, len(s.banks))
	for _, b := range s.banks {
		bank := *b
		bank.AssignedUsers = counts[b.ID]
		banks = append(banks, bank)
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i].ID < banks[j].ID })
	return banks
}

func (s *MemoryStore) GetBank(id int) (models.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.banks[id]
	if !ok {
		return models.Bank{}, fmt.Errorf("bank %d: %w", id, models.ErrNotFound)
	}
	bank := *b
	bank.AssignedUsers = s.bankCountsLocked()[id]
	return bank, nil
}

func (s *MemoryStore) CreateBank(name string) (models.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := models.Bank{ID: s.nextBankID, Name: name, CreatedAt: s.now()}
	s.nextBankID++
	stored := b
	s.banks[b.ID] = &stored
	return b, nil
}

// DeleteBank removes the bank and unassigns it from every user.
func (s *MemoryStore) DeleteBank(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.banks[id]; !ok {
		return fmt.Errorf("bank %d: %w", id, models.ErrNotFound)
	}
	delete(s.banks, id)

	for _, u := range s.users {
		if !u.HasBank(id) {
			continue
		}
		kept := make([]int, 0, len(u.AssignedBanks)-1)
		for _, b := range u.AssignedBanks {
			if b != id {
				kept = append(kept, b)
			}
		}
		u.AssignedBanks = kept
		u.UpdatedAt = s.now()
	}
	return nil
}

func (s *MemoryStore) bankCountsLocked() map[int]int {
	counts := make(map[int]int, len(s.banks))
	for _, u := range s.users {
		if u.Status == models.UserStatusDeleted {
			continue
		}
		for _, b := range u.AssignedBanks {
			counts[b]++
		}
	}
	return counts
}
