package auth

import (
	"strings"
	"sync"
)

// Roster is an in-memory user store standing in for a real identity
// backend. A mutex guards the slice so concurrent registrations cannot
// race the uniqueness check. Contents are lost on restart.
type Roster struct {
	mu    sync.RWMutex
	users []User
}

func NewRoster(seed ...User) *Roster {
	return &Roster{users: append([]User{}, seed...)}
}

// FindByLogin matches the login against username or email,
// case-insensitively.
func (r *Roster) FindByLogin(login string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(login)
	for _, u := range r.users {
		if strings.ToLower(u.Username) == needle || strings.ToLower(u.Email) == needle {
			return u, true
		}
	}
	return User{}, false
}

func (r *Roster) FindByID(id string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// Insert appends the user unless the username or email is already taken.
// The check and the append happen under one lock.
func (r *Roster) Insert(user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	username := strings.ToLower(user.Username)
	email := strings.ToLower(user.Email)
	for _, u := range r.users {
		if strings.ToLower(u.Username) == username || strings.ToLower(u.Email) == email {
			return ErrDuplicateUser
		}
	}

	r.users = append(r.users, user)
	return nil
}

func (r *Roster) UpdatePassword(id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i].PasswordHash = hash
			return nil
		}
	}
	return ErrUserNotFound
}
