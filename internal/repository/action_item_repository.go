package repository

import (
	"github.com/clearpointhq/client-portal-api/internal/database"
	"github.com/clearpointhq/client-portal-api/internal/models"
	"github.com/clearpointhq/client-portal-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormActionItemRepository is a GORM implementation of ActionItemRepository
type GormActionItemRepository struct {
	db *gorm.DB
}

// NewActionItemRepository creates a new ActionItemRepository
func NewActionItemRepository(db *gorm.DB) ActionItemRepository {
	return &GormActionItemRepository{db: db}
}

// FindByID finds an action item by ID with optional preloading
func (r *GormActionItemRepository) FindByID(id uint64, preload ...string) (*models.ActionItem, error) {
	var item models.ActionItem
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&item, id).Error; err != nil {
		return nil, err
	}

	return &item, nil
}

// List retrieves action items with filtering and pagination
func (r *GormActionItemRepository) List(filter ActionItemFilter) ([]models.ActionItem, int64, error) {
	var items []models.ActionItem

	query := r.db.Model(&models.ActionItem{})

	if filter.ProjectID != nil {
		query = query.Where("action_items.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("action_items.status = ?", *filter.Status)
	}
	if filter.AssignedTo != nil {
		query = query.Where("action_items.assigned_to = ?", *filter.AssignedTo)
	}
	if filter.ClientViewerID != nil {
		ownProjects := r.db.Model(&models.Project{}).
			Select("1").
			Where("projects.id = action_items.project_id").
			Where("projects.client_id = ?", *filter.ClientViewerID).
			Where("projects.deleted_at IS NULL")
		query = query.Where(
			"action_items.assigned_to = ? OR (action_items.visible_to_client = ? AND EXISTS (?))",
			*filter.ClientViewerID, true, ownProjects,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("action_items.created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Preload("Assignee").Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Create creates a new action item
func (r *GormActionItemRepository) Create(item *models.ActionItem) error {
	return r.db.Create(item).Error
}

// Update updates an action item
func (r *GormActionItemRepository) Update(item *models.ActionItem) error {
	return r.db.Save(item).Error
}

// InTransaction runs fn against a transaction-scoped store
func (r *GormActionItemRepository) InTransaction(fn func(TransitionStore) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransitionStore{tx: tx})
	})
}

type gormTransitionStore struct {
	tx *gorm.DB
}

// ItemForUpdate loads an item with its project under a row lock.
// SQLite has no row-level locks; its single-writer model already
// serializes concurrent transactions there.
func (s *gormTransitionStore) ItemForUpdate(id uint64) (*models.ActionItem, error) {
	query := s.tx.Preload("Project")
	if s.tx.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var item models.ActionItem
	if err := query.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *gormTransitionStore) SaveItem(item *models.ActionItem) error {
	return s.tx.Save(item).Error
}

func (s *gormTransitionStore) CreateItem(item *models.ActionItem) error {
	return s.tx.Create(item).Error
}

func (s *gormTransitionStore) AppendHistory(entry *models.ActionStatusHistory) error {
	return s.tx.Create(entry).Error
}
