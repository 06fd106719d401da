package auth

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

// Session is the result of a successful login, registration or refresh.
type Session struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresIn string `json:"expires_in"`
}

type Service struct {
	roster        *Roster
	tokens        *TokenManager
	logger        *slog.Logger
	bcryptCost    int
	logins        prometheus.Counter
	registrations prometheus.Counter
}

func NewService(roster *Roster, tokens *TokenManager, logger *slog.Logger, bcryptCost int, logins, registrations prometheus.Counter) *Service {
	return &Service{
		roster:        roster,
		tokens:        tokens,
		logger:        logger,
		bcryptCost:    bcryptCost,
		logins:        logins,
		registrations: registrations,
	}
}

// SeedUsers builds the fixed boot-time accounts, hashing the well-known
// passwords with the configured cost. Stand-in for a real identity store.
func SeedUsers(cost int) ([]User, error) {
	seed := []struct {
		username, email, password, role string
	}{
		{"admin", "admin@example.com", "admin123", RoleAdmin},
		{"manager", "manager@example.com", "manager123", RoleManager},
	}

	users := make([]User, 0, len(seed))
	now := time.Now().UTC()
	for _, s := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password for %s: %w", s.username, err)
		}
		users = append(users, User{
			ID:           uuid.NewString(),
			Username:     s.username,
			Email:        s.email,
			PasswordHash: string(hash),
			Role:         s.role,
			CreatedAt:    now,
		})
	}
	return users, nil
}

// Login authenticates by username or email. Unknown user and wrong
// password both return ErrInvalidCredentials.
func (s *Service) Login(login, password string) (Session, error) {
	user, ok := s.roster.FindByLogin(login)
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	session, err := s.newSession(user)
	if err != nil {
		return Session{}, err
	}

	s.logins.Inc()
	return session, nil
}

func (s *Service) Register(username, email, password string) (Session, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if !ValidEmail(email) {
		return Session{}, ErrInvalidEmail
	}
	if !ValidPassword(password) {
		return Session{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.roster.Insert(user); err != nil {
		return Session{}, err
	}

	session, err := s.newSession(user)
	if err != nil {
		return Session{}, err
	}

	s.registrations.Inc()
	return session, nil
}

func (s *Service) ChangePassword(userID, current, next string) error {
	user, ok := s.roster.FindByID(userID)
	if !ok {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	if !ValidPassword(next) {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.roster.UpdatePassword(userID, string(hash))
}

// Refresh re-signs a token for the same identity with a fresh expiry.
func (s *Service) Refresh(claims Claims) (Session, error) {
	user, ok := s.roster.FindByID(claims.UserID)
	if !ok {
		// The identity may have only ever lived in the token (roster was
		// reseeded); re-sign from the claims themselves.
		s.logger.Warn("refresh for user missing from roster", "user_id", claims.UserID)
		user = User{
			ID:       claims.UserID,
			Username: claims.Username,
			Email:    claims.Email,
			Role:     claims.Role,
		}
	}
	return s.newSession(user)
}

func (s *Service) VerifyToken(raw string) (Claims, error) {
	return s.tokens.Verify(raw)
}

func (s *Service) newSession(user User) (Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{
		User:      user,
		Token:     token,
		ExpiresIn: s.tokens.TTL().String(),
	}, nil
}
