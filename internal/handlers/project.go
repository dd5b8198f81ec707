package handlers

import (
	"errors"
	"net/http"
	"strconv"

	apierrors "github.com/clearpointhq/client-portal-api/internal/errors"
	"github.com/clearpointhq/client-portal-api/internal/middleware"
	"github.com/clearpointhq/client-portal-api/internal/repository"
	"github.com/clearpointhq/client-portal-api/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProjectHandler exposes project read paths that consume the progress
// calculator.
type ProjectHandler struct {
	progressService *services.ProgressService
	projectRepo     repository.ProjectRepository
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(progressService *services.ProgressService, projectRepo repository.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{
		progressService: progressService,
		projectRepo:     projectRepo,
	}
}

// GetProjectProgress returns the blended completion percentage for a
// project. Clients may only read their own projects.
func (h *ProjectHandler) GetProjectProgress(c *gin.Context) {
	projectIDStr := c.Param("id")
	projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	role, _ := middleware.GetUserRole(c)

	project, err := h.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Project not found")
			return
		}
		apierrors.InternalError(c, "Failed to load project")
		return
	}

	if !role.IsStaff() && project.ClientID != userID {
		// 404 instead of 403 to avoid leaking project existence.
		apierrors.NotFound(c, "Project not found")
		return
	}

	progress, err := h.progressService.ComputeForProject(projectID)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			apierrors.NotFound(c, "Project not found")
			return
		}
		apierrors.InternalError(c, "Failed to compute progress")
		return
	}

	c.JSON(http.StatusOK, progress)
}
