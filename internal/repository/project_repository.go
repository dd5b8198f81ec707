package repository

import (
	"github.com/clearpointhq/client-portal-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindWithTasksAndMilestones loads the progress aggregate
func (r *GormProjectRepository) FindWithTasksAndMilestones(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.
		Preload("ActionItems").
		Preload("Milestones").
		First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}
