// Package projects manages the tracked-site registry. Every event row
// and every analytics request is scoped to a project.
package projects

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidProjectID = errors.New("invalid project id")
	ErrProjectNotFound  = errors.New("project not found")
)

// Project is a tracked website.
type Project struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Domain    string `gorm:"uniqueIndex;not null" json:"domain"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateID rejects malformed project identifiers before any store
// query runs. IDs are UUID strings.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidProjectID, id)
	}
	return nil
}

// Create registers a new project with a generated identifier.
func Create(db *gorm.DB, name, domain string) (Project, error) {
	project := Project{
		ID:     uuid.NewString(),
		Name:   name,
		Domain: domain,
	}
	if err := db.Create(&project).Error; err != nil {
		return Project{}, fmt.Errorf("creating project: %w", err)
	}
	return project, nil
}

// GetByID fetches a project, returning ErrProjectNotFound for unknown
// identifiers.
func GetByID(db *gorm.DB, id string) (Project, error) {
	var project Project
	err := db.First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}
		return Project{}, fmt.Errorf("fetching project: %w", err)
	}
	return project, nil
}

// GetByDomain fetches a project by its registered domain.
func GetByDomain(db *gorm.DB, domain string) (Project, error) {
	var project Project
	err := db.First(&project, "domain = ?", domain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Project{}, fmt.Errorf("%w: domain %s", ErrProjectNotFound, domain)
		}
		return Project{}, fmt.Errorf("fetching project: %w", err)
	}
	return project, nil
}
