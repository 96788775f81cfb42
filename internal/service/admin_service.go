package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tryout-service/internal/hashing"
	"tryout-service/internal/model"
	redisrepo "tryout-service/internal/repository/redis"
	"tryout-service/internal/repository/scylla"
	"tryout-service/internal/util"
)

// AdminService authenticates admin accounts and manages their opaque
// session tokens. Review actions require both a valid token and the admin
// role on the account.
type AdminService struct {
	admins     model.AdminRepository
	sessions   model.SessionCache
	sessionTTL time.Duration
}

func NewAdminService(admins model.AdminRepository, sessions model.SessionCache, sessionTTL time.Duration) *AdminService {
	return &AdminService{
		admins:     admins,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Login verifies the bcrypt hash and the role, then issues a session token.
// All failure modes collapse into ErrInvalidCredentials.
func (s *AdminService) Login(username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrMissingFields
	}

	a, err := s.admins.GetAdmin(username)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to log in admin: %w", err)
	}

	if !hashing.VerifyAdminPassword(password, a.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	if a.Role != model.AdminRole {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString() + uuid.NewString()
	if err := s.sessions.PutSession(token, a.Username, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to create admin session: %w", err)
	}

	util.Info("Admin logged in", util.String("username", a.Username))
	return token, nil
}

// Authenticate resolves a session token to the admin username.
func (s *AdminService) Authenticate(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidCredentials
	}
	username, err := s.sessions.GetSession(token)
	if err != nil {
		if errors.Is(err, redisrepo.ErrNoRecord) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to authenticate admin: %w", err)
	}
	return username, nil
}

// Logout revokes the session. Unknown tokens are a no-op.
func (s *AdminService) Logout(token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteSession(token)
}
