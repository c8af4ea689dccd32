package auth

import (
	"context"
	"errors"
	"strings"

	"kakeibo/internal/models"
	"kakeibo/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrMissingCredentials is returned by Register when the username or
	// password is empty after trimming.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrInvalidCredentials is returned by Authenticate for both an
	// unknown username and a wrong password, so callers cannot tell the
	// two cases apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword verifies a password against a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Service implements registration and credential verification against
// the users table.
type Service struct {
	db *storage.DB
}

// NewService creates a credential service backed by db.
func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

// Register creates a new user. The username is trimmed before use. A
// duplicate username surfaces as storage.ErrUsernameTaken; there is no
// lookup-then-insert race, the unique constraint is the only check.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	return s.db.CreateUser(ctx, username, hash)
}

// Authenticate looks up a user by exact username and verifies the
// password against the stored hash.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
