package repository

import (
	"context"
	"fmt"
	"time"

	"sorta/internal/models"
)

func (s *Store) CreateProject(ctx context.Context, ownerID string, p *models.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UserID = ownerID
	p.MintAt = p.MintAt.UTC()
	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		log.Errorf("CreateProject: failed to create %q: %v", p.Name, err)
		return fmt.Errorf("failed to create project: %w", err)
	}
	log.Infof("CreateProject: created project %s (%s)", p.ID, p.Name)
	return nil
}

// ListProjects returns the owner's projects ordered by mint time. Zero from or
// to leave that end open. Mint times are stored in UTC so they compare as text.
func (s *Store) ListProjects(ctx context.Context, ownerID string, from, to time.Time) ([]models.Project, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", ownerID)
	if !from.IsZero() {
		q = q.Where("mint_at >= ?", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where("mint_at < ?", to.UTC())
	}

	var projects []models.Project
	if err := q.Order("mint_at").Find(&projects).Error; err != nil {
		log.Errorf("ListProjects: %v", err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *Store) SetProjectStatus(ctx context.Context, ownerID, id string, status models.ProjectStatus) error {
	res := s.DB.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, ownerID, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Project{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) CountProjects(ctx context.Context, ownerID string, status models.ProjectStatus) (int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Project{}).Where("user_id = ?", ownerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}
