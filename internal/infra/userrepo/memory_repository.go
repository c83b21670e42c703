package userrepo

import (
	"context"
	"sync"
	"time"

	"github.com/innercalm/backend/internal/domain/auth"
)

// MemoryRepository keeps users in process memory. It backs development and
// testing profiles where DATABASE_URL does not point at Postgres.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[int64]auth.User
	prefs map[int64]auth.Preferences
	seq   int64
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[int64]auth.User),
		prefs: make(map[int64]auth.Preferences),
	}
}

func (r *MemoryRepository) Create(_ context.Context, email, username, fullName, passwordHash string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return auth.User{}, auth.ErrEmailExists
		}
		if user.Username == username {
			return auth.User{}, auth.ErrUsernameExists
		}
	}
	r.seq++
	now := time.Now().UTC()
	user := auth.User{
		ID:           r.seq,
		Email:        email,
		Username:     username,
		FullName:     fullName,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return auth.User{}, false, nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, true, nil
		}
	}
	return auth.User{}, false, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	return user, ok, nil
}

func (r *MemoryRepository) UpdateProfile(_ context.Context, id int64, email, fullName string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := r.users[id]
	user.Email = email
	user.FullName = fullName
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return user, nil
}

func (r *MemoryRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := r.users[id]
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}

func (r *MemoryRepository) SetActive(_ context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := r.users[id]
	user.IsActive = active
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	delete(r.prefs, id)
	return nil
}

func (r *MemoryRepository) GetPreferences(_ context.Context, userID int64) (auth.Preferences, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefs, ok := r.prefs[userID]
	return prefs, ok, nil
}

func (r *MemoryRepository) SavePreferences(_ context.Context, userID int64, prefs auth.Preferences) (auth.Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[userID] = prefs
	return prefs, nil
}

var _ auth.Repository = (*MemoryRepository)(nil)
