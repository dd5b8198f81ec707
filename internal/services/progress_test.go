package services

import (
	"testing"
	"time"

	"github.com/clearpointhq/client-portal-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func projectItem(projectID uint64, status models.ActionItemStatus) models.ActionItem {
	return models.ActionItem{
		Title:     "Item",
		Status:    status,
		ProjectID: &projectID,
	}
}

func milestone(done bool) models.Milestone {
	m := models.Milestone{Title: "Milestone"}
	if done {
		now := time.Now()
		m.CompletedAt = &now
	}
	return m
}

// TestComputeProgress_BlendsBothSignals tests the 60/40 task/milestone blend
func TestComputeProgress_BlendsBothSignals(t *testing.T) {
	items := []models.ActionItem{
		projectItem(1, models.ActionStatusCompleted),
		projectItem(1, models.ActionStatusCompleted),
		projectItem(1, models.ActionStatusPending),
		projectItem(1, models.ActionStatusInProgress),
	}
	milestones := []models.Milestone{milestone(true), milestone(false)}

	// 2/4 tasks * 60 + 1/2 milestones * 40 = 30 + 20
	result := ComputeProgress(items, milestones, models.ProjectStatusActive, 0)
	assert.Equal(t, 50, result)
}

// TestComputeProgress_TasksOnly tests the single-signal task ratio
func TestComputeProgress_TasksOnly(t *testing.T) {
	items := []models.ActionItem{
		projectItem(1, models.ActionStatusCompleted),
		projectItem(1, models.ActionStatusCompleted),
		projectItem(1, models.ActionStatusCompleted),
	}

	result := ComputeProgress(items, nil, models.ProjectStatusActive, 0)
	assert.Equal(t, 100, result)

	items[2].Status = models.ActionStatusPending
	result = ComputeProgress(items, nil, models.ProjectStatusActive, 0)
	assert.Equal(t, 67, result)
}

// TestComputeProgress_MilestonesOnly tests the single-signal milestone ratio
func TestComputeProgress_MilestonesOnly(t *testing.T) {
	milestones := []models.Milestone{milestone(true), milestone(false), milestone(false), milestone(false)}

	result := ComputeProgress(nil, milestones, models.ProjectStatusActive, 0)
	assert.Equal(t, 25, result)
}

// TestComputeProgress_CompletedProjectAlways100 tests the COMPLETED override
func TestComputeProgress_CompletedProjectAlways100(t *testing.T) {
	items := []models.ActionItem{
		projectItem(1, models.ActionStatusPending),
		projectItem(1, models.ActionStatusPending),
	}

	result := ComputeProgress(items, nil, models.ProjectStatusCompleted, 0)
	assert.Equal(t, 100, result)

	// Even with no signals at all
	result = ComputeProgress(nil, nil, models.ProjectStatusCompleted, 10)
	assert.Equal(t, 100, result)
}

// TestComputeProgress_FallbackWhenNoSignals tests the manual fallback value
func TestComputeProgress_FallbackWhenNoSignals(t *testing.T) {
	assert.Equal(t, 37, ComputeProgress(nil, nil, models.ProjectStatusActive, 37))
	assert.Equal(t, 0, ComputeProgress(nil, nil, models.ProjectStatusActive, -5))
	assert.Equal(t, 100, ComputeProgress(nil, nil, models.ProjectStatusActive, 150))
}

// TestComputeProgress_IgnoresGlobalItems tests that items without a project
// carry no signal
func TestComputeProgress_IgnoresGlobalItems(t *testing.T) {
	global := models.ActionItem{Title: "Global", Status: models.ActionStatusPending}
	items := []models.ActionItem{
		global,
		projectItem(1, models.ActionStatusCompleted),
	}

	result := ComputeProgress(items, nil, models.ProjectStatusActive, 0)
	assert.Equal(t, 100, result)

	// Only global items means no task signal at all
	result = ComputeProgress([]models.ActionItem{global}, nil, models.ProjectStatusActive, 42)
	assert.Equal(t, 42, result)
}

// TestComputeProgress_Monotonic tests that completing any single item or
// milestone never decreases the result
func TestComputeProgress_Monotonic(t *testing.T) {
	items := []models.ActionItem{
		projectItem(1, models.ActionStatusCompleted),
		projectItem(1, models.ActionStatusPending),
		projectItem(1, models.ActionStatusPending),
	}
	milestones := []models.Milestone{milestone(true), milestone(false), milestone(false)}

	before := ComputeProgress(items, milestones, models.ProjectStatusActive, 0)

	for i := range items {
		if items[i].Status == models.ActionStatusCompleted {
			continue
		}
		bumped := make([]models.ActionItem, len(items))
		copy(bumped, items)
		bumped[i].Status = models.ActionStatusCompleted
		assert.GreaterOrEqual(t, ComputeProgress(bumped, milestones, models.ProjectStatusActive, 0), before)
	}

	for i := range milestones {
		if milestones[i].CompletedAt != nil {
			continue
		}
		bumped := make([]models.Milestone, len(milestones))
		copy(bumped, milestones)
		now := time.Now()
		bumped[i].CompletedAt = &now
		assert.GreaterOrEqual(t, ComputeProgress(items, bumped, models.ProjectStatusActive, 0), before)
	}
}

// TestComputeProgress_Bounds tests that results stay within 0-100
func TestComputeProgress_Bounds(t *testing.T) {
	items := []models.ActionItem{
		projectItem(1, models.ActionStatusCompleted),
	}
	milestones := []models.Milestone{milestone(true)}

	result := ComputeProgress(items, milestones, models.ProjectStatusActive, 0)
	assert.Equal(t, 100, result)

	items[0].Status = models.ActionStatusPending
	result = ComputeProgress(items, []models.Milestone{milestone(false)}, models.ProjectStatusActive, 0)
	assert.Equal(t, 0, result)
}
