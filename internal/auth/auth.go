// Package auth registers users and issues signed session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wellnessbuddy/wellness-platform/internal/contacts"
)

var (
	ErrUserExists         = errors.New("auth: user already exists")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidInput       = errors.New("auth: invalid input")
	ErrUserNotFound       = errors.New("auth: user not found")
)

const (
	minPasswordLength = 8
	// bcrypt only hashes the first 72 bytes and rejects anything longer.
	maxPasswordBytes = 72
	issuer           = "wellness-buddy"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// InMemoryUserRepository keeps users in a map keyed by lowercase username.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]*User)}
}

func (r *InMemoryUserRepository) Create(_ context.Context, user *User) error {
	key := strings.ToLower(user.Username)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[key]; ok {
		return ErrUserExists
	}
	copied := *user
	r.users[key] = &copied
	return nil
}

func (r *InMemoryUserRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[strings.ToLower(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

// Token is a signed session token.
type Token struct {
	AccessToken string    `json:"token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

// Service registers users and logs them in.
type Service struct {
	repo   UserRepository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func NewService(repo UserRepository, secret string, ttl time.Duration) *Service {
	if repo == nil {
		repo = NewInMemoryUserRepository()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{repo: repo, secret: []byte(secret), ttl: ttl, cost: bcrypt.DefaultCost, now: time.Now}
}

// Register creates an account. Email is optional.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordBytes)
	}
	if strings.TrimSpace(email) != "" {
		normalized, err := contacts.NormalizeEmail(email)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		email = normalized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("auth: signing secret not configured")
	}
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return &Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expires.UTC(), User: user}, nil
}
