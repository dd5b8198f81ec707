package services

import (
	"errors"
	"fmt"

	"github.com/clearpointhq/client-portal-api/internal/models"
	"github.com/clearpointhq/client-portal-api/internal/repository"
	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("project not found")

// ProgressService exposes the progress calculation to read paths.
type ProgressService struct {
	projectRepo repository.ProjectRepository
}

// NewProgressService creates a new ProgressService
func NewProgressService(projectRepo repository.ProjectRepository) *ProgressService {
	return &ProgressService{projectRepo: projectRepo}
}

// ProjectProgress holds the computed percentage alongside the raw counts
// used to derive it.
type ProjectProgress struct {
	ProjectID           uint64               `json:"project_id"`
	Status              models.ProjectStatus `json:"status"`
	Progress            int                  `json:"progress"`
	TotalTasks          int                  `json:"total_tasks"`
	CompletedTasks      int                  `json:"completed_tasks"`
	TotalMilestones     int                  `json:"total_milestones"`
	CompletedMilestones int                  `json:"completed_milestones"`
}

// ComputeForProject loads the project aggregate and applies ComputeProgress.
func (s *ProgressService) ComputeForProject(projectID uint64) (*ProjectProgress, error) {
	project, err := s.projectRepo.FindWithTasksAndMilestones(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	result := &ProjectProgress{
		ProjectID: project.ID,
		Status:    project.Status,
		Progress:  ComputeProgress(project.ActionItems, project.Milestones, project.Status, project.Progress),
	}

	for _, item := range project.ActionItems {
		if item.ProjectID == nil {
			continue
		}
		result.TotalTasks++
		if item.Status == models.ActionStatusCompleted {
			result.CompletedTasks++
		}
	}
	for _, m := range project.Milestones {
		result.TotalMilestones++
		if m.CompletedAt != nil {
			result.CompletedMilestones++
		}
	}

	return result, nil
}
