package identserver

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/workdesk/workdesk-go/internal/data"
	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	"github.com/workdesk/workdesk-go/internal/domain/model"
)

// MemoryUserRepo is an in-memory UserRepository for development and tests.
type MemoryUserRepo struct {
	mu     sync.RWMutex
	nextID int
	byID   map[int]*model.User
	byMail map[string]int
}

// NewMemoryUserRepo creates an empty in-memory user repository.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		nextID: 1,
		byID:   make(map[int]*model.User),
		byMail: make(map[string]int),
	}
}

func (r *MemoryUserRepo) Create(_ context.Context, req *model.CreateUserRequest, passwordHash string) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email := model.NormalizeEmail(req.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byMail[email]; exists {
		return nil, data.ErrEmailExists
	}
	now := time.Now().UTC()
	user := &model.User{
		ID:           r.nextID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		Position:     req.Position,
		DepartmentID: req.DepartmentID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.nextID++
	r.byID[user.ID] = user
	r.byMail[email] = user.ID
	out := *user
	return &out, nil
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id int) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, data.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byMail[model.NormalizeEmail(email)]
	if !ok {
		return nil, data.ErrUserNotFound
	}
	out := *r.byID[id]
	return &out, nil
}

func (r *MemoryUserRepo) List(_ context.Context, limit, offset int) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var users []*model.User
	for i, id := range ids {
		if i < offset {
			continue
		}
		if limit > 0 && len(users) == limit {
			break
		}
		out := *r.byID[id]
		users = append(users, &out)
	}
	return users, nil
}

func (r *MemoryUserRepo) UpdatePassword(_ context.Context, userID int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return data.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// MemorySessionStore is an in-memory SessionStore for development and tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (s *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domainauth.Session{}, errSessionNotFound
	}
	return sess, nil
}

func (s *MemorySessionStore) Touch(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return errSessionNotFound
	}
	sess.ExpiresAt = time.Now().Add(ttl)
	s.sessions[id] = sess
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type sessionNotFoundError struct{}

func (sessionNotFoundError) Error() string { return "session not found" }

var errSessionNotFound error = sessionNotFoundError{}

// MemoryResetStore is an in-memory ResetTokenStore for development and tests.
type MemoryResetStore struct {
	mu     sync.Mutex
	resets map[string]model.PasswordReset
	now    func() time.Time
}

// NewMemoryResetStore creates an empty in-memory reset token store.
func NewMemoryResetStore() *MemoryResetStore {
	return &MemoryResetStore{resets: make(map[string]model.PasswordReset), now: time.Now}
}

func (s *MemoryResetStore) Save(_ context.Context, reset model.PasswordReset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[reset.Token] = reset
	return nil
}

func (s *MemoryResetStore) Consume(_ context.Context, token string) (model.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reset, ok := s.resets[token]
	if !ok {
		return model.PasswordReset{}, data.ErrResetTokenNotFound
	}
	delete(s.resets, token)
	if reset.Expired(s.now()) {
		return model.PasswordReset{}, data.ErrResetTokenNotFound
	}
	return reset, nil
}
