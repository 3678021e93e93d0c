// Package auth signs local users in and out and resolves the current owner.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/crypto/bcrypt"

	crypto2 "sorta/internal/crypto"
	"sorta/internal/models"
	"sorta/internal/repository"
)

var log = logging.Logger("auth")

const (
	MinPasswordLen = 6
	ResetTokenTTL  = time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotSignedIn        = errors.New("not signed in, run 'sorta auth signin'")
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	ErrInvalidResetToken  = errors.New("reset token is invalid or expired")
)

// Store is the part of the repository the service needs.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateSession(ctx context.Context, sess *models.Session) error
	GetSession(ctx context.Context, tokenHash string, now time.Time) (*models.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	CreatePasswordReset(ctx context.Context, r *models.PasswordReset) error
	ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*models.User, error)
}

type Service struct {
	store   Store
	keyring Keyring
	ttl     time.Duration
	cost    int
	now     func() time.Time
}

type Option func(*Service)

func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) { s.ttl = d }
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, keyring Keyring, opts ...Option) *Service {
	s := &Service{
		store:   store,
		keyring: keyring,
		ttl:     30 * 24 * time.Hour,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func validateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if len(password) < MinPasswordLen {
		return ErrWeakPassword
	}
	return nil
}

// SignUp registers a user and signs them in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.store.CreateUser(ctx, email, string(hash))
	if err != nil {
		return nil, err
	}
	if err := s.startSession(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		log.Debugf("SignIn: password mismatch for %s", u.ID)
		return nil, ErrInvalidCredentials
	}
	if err := s.startSession(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) startSession(ctx context.Context, u *models.User) error {
	token, err := crypto2.NewToken()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	sess := &models.Session{
		TokenHash: crypto2.HashToken(token),
		UserID:    u.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return err
	}
	if err := s.keyring.Set(token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	log.Infof("startSession: signed in %s", u.ID)
	return nil
}

// CurrentUser returns the signed in user, or nil when there is none or the
// session expired.
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	token, err := s.keyring.Get()
	if errors.Is(err, ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess, err := s.store.GetSession(ctx, crypto2.HashToken(token), s.now())
	if errors.Is(err, repository.ErrNotFound) {
		_ = s.keyring.Delete()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.store.GetUserByID(ctx, sess.UserID)
}

// RequireUser is CurrentUser that fails with ErrNotSignedIn instead of
// returning nil.
func (s *Service) RequireUser(ctx context.Context) (*models.User, error) {
	u, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotSignedIn
	}
	return u, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	token, err := s.keyring.Get()
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, crypto2.HashToken(token)); err != nil {
		return err
	}
	return s.keyring.Delete()
}

// RequestPasswordReset issues a single use reset token for email. An unknown
// email yields an empty token and no error so callers cannot probe accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		log.Infof("RequestPasswordReset: no account for requested email")
		return "", nil
	}
	if err != nil {
		return "", err
	}
	token, err := crypto2.NewToken()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	r := &models.PasswordReset{
		TokenHash: crypto2.HashToken(token),
		UserID:    u.ID,
		ExpiresAt: now.Add(ResetTokenTTL),
		CreatedAt: now,
	}
	if err := s.store.CreatePasswordReset(ctx, r); err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword sets a new password using a reset token. Every session of
// the user is ended.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < MinPasswordLen {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.store.ResetPassword(ctx, crypto2.HashToken(token), string(hash), s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidResetToken
	}
	return err
}
