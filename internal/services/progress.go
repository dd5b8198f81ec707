package services

import (
	"math"

	"github.com/clearpointhq/client-portal-api/internal/models"
)

// Blend weights for the two completion signals. Tasks dominate because
// milestones are coarser checkpoints.
const (
	taskWeight      = 60
	milestoneWeight = 40
)

// ComputeProgress blends action item and milestone completion into a single
// 0-100 percentage. It is pure and safe for unrestricted concurrent use.
//
// A COMPLETED project always reads 100. With both signals present the
// result is a 60/40 task/milestone blend; with one signal it is that ratio
// alone; with neither it falls back to the manually set project value.
// Flipping any single item or milestone to complete never decreases the
// result.
func ComputeProgress(items []models.ActionItem, milestones []models.Milestone, status models.ProjectStatus, fallbackProgress int) int {
	if status == models.ProjectStatusCompleted {
		return 100
	}

	var taskTotal, taskDone int
	for _, item := range items {
		if item.ProjectID == nil {
			// Global items carry no project signal.
			continue
		}
		taskTotal++
		if item.Status == models.ActionStatusCompleted {
			taskDone++
		}
	}

	var milestoneTotal, milestoneDone int
	for _, m := range milestones {
		milestoneTotal++
		if m.CompletedAt != nil {
			milestoneDone++
		}
	}

	switch {
	case taskTotal > 0 && milestoneTotal > 0:
		taskRatio := float64(taskDone) / float64(taskTotal)
		milestoneRatio := float64(milestoneDone) / float64(milestoneTotal)
		return int(math.Round(taskRatio*taskWeight + milestoneRatio*milestoneWeight))
	case taskTotal > 0:
		return int(math.Round(float64(taskDone) / float64(taskTotal) * 100))
	case milestoneTotal > 0:
		return int(math.Round(float64(milestoneDone) / float64(milestoneTotal) * 100))
	default:
		return clampProgress(fallbackProgress)
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
