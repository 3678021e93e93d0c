package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"sorta/internal/models"
)

var ErrEmailTaken = errors.New("email already registered")

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	u := &models.User{Email: normalizeEmail(email), PasswordHash: passwordHash}

	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if n > 0 {
		return nil, ErrEmailTaken
	}

	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		log.Errorf("CreateUser: failed to create user: %v", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Infof("CreateUser: created user %s", u.ID)
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		return nil, notFound(err, "user", normalizeEmail(email))
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &u, nil
}

func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	if err := s.DB.WithContext(ctx).Create(sess).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession returns the session for tokenHash unless it has expired.
func (s *Store) GetSession(ctx context.Context, tokenHash string, now time.Time) (*models.Session, error) {
	var sess models.Session
	err := s.DB.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", tokenHash, now.UTC()).
		First(&sess).Error
	if err != nil {
		return nil, notFound(err, "session", "")
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	return s.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&models.Session{}).Error
}

func (s *Store) CreatePasswordReset(ctx context.Context, r *models.PasswordReset) error {
	if err := s.DB.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to create password reset: %w", err)
	}
	return nil
}

// ResetPassword consumes an unused, unexpired reset token, stores the new
// hash and signs the user out everywhere.
func (s *Store) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.PasswordReset
		err := tx.Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", tokenHash, now.UTC()).First(&r).Error
		if err != nil {
			return notFound(err, "password reset", "")
		}
		if err := tx.Model(&r).Update("used_at", now).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", r.UserID).
			Updates(map[string]any{"password_hash": passwordHash, "updated_at": now}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", r.UserID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", r.UserID).First(&user).Error
	})
	if err != nil {
		log.Errorf("ResetPassword: %v", err)
		return nil, err
	}
	log.Infof("ResetPassword: password changed for %s", user.ID)
	return &user, nil
}
