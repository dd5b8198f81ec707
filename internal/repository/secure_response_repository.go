package repository

import (
	"time"

	"github.com/clearpointhq/client-portal-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSecureResponseRepository is a GORM implementation of SecureResponseRepository
type GormSecureResponseRepository struct {
	db *gorm.DB
}

// NewSecureResponseRepository creates a new SecureResponseRepository
func NewSecureResponseRepository(db *gorm.DB) SecureResponseRepository {
	return &GormSecureResponseRepository{db: db}
}

// Upsert replaces the single vault slot for an action item. Concurrent
// submissions race on last-write-wins; the slot holds whichever write
// lands last.
func (r *GormSecureResponseRepository) Upsert(resp *models.ActionSecureResponse) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "action_item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"encrypted_data", "submitted_by", "updated_at"}),
		}).
		Create(resp).Error
}

// FindByActionItemID finds the vault row for an item
func (r *GormSecureResponseRepository) FindByActionItemID(actionItemID uint64) (*models.ActionSecureResponse, error) {
	var resp models.ActionSecureResponse
	if err := r.db.Where("action_item_id = ?", actionItemID).First(&resp).Error; err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteByActionItemID removes the vault row
func (r *GormSecureResponseRepository) DeleteByActionItemID(actionItemID uint64) error {
	return r.db.Where("action_item_id = ?", actionItemID).
		Delete(&models.ActionSecureResponse{}).Error
}

// DeleteExpired purges EXPIRE_AFTER_HOURS rows whose window has passed.
// Expiry is measured from the latest submission (updated_at), regardless
// of whether the row was ever read.
func (r *GormSecureResponseRepository) DeleteExpired(now time.Time) (int64, error) {
	var candidates []models.ActionSecureResponse
	err := r.db.
		Joins("JOIN action_items ON action_items.id = action_secure_responses.action_item_id").
		Where("action_items.secure_retention_policy = ?", models.RetentionExpireAfterHours).
		Where("action_items.secure_expire_after_hours IS NOT NULL").
		Preload("ActionItem").
		Find(&candidates).Error
	if err != nil {
		return 0, err
	}

	var expired []uint64
	for _, c := range candidates {
		hours := c.ActionItem.SecureExpireAfterHours
		if hours == nil {
			continue
		}
		if !c.UpdatedAt.Add(time.Duration(*hours) * time.Hour).After(now) {
			expired = append(expired, c.ActionItemID)
		}
	}

	if len(expired) == 0 {
		return 0, nil
	}

	result := r.db.Where("action_item_id IN ?", expired).Delete(&models.ActionSecureResponse{})
	return result.RowsAffected, result.Error
}

// InTransaction runs fn against a transaction-scoped store
func (r *GormSecureResponseRepository) InTransaction(fn func(VaultStore) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormVaultStore{tx: tx})
	})
}

type gormVaultStore struct {
	tx *gorm.DB
}

func (s *gormVaultStore) ResponseForUpdate(actionItemID uint64) (*models.ActionSecureResponse, error) {
	query := s.tx
	if s.tx.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var resp models.ActionSecureResponse
	if err := query.Where("action_item_id = ?", actionItemID).First(&resp).Error; err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *gormVaultStore) DeleteResponse(actionItemID uint64) error {
	return s.tx.Where("action_item_id = ?", actionItemID).
		Delete(&models.ActionSecureResponse{}).Error
}

func (s *gormVaultStore) StampViewed(actionItemID uint64, at time.Time) error {
	return s.tx.Model(&models.ActionItem{}).
		Where("id = ?", actionItemID).
		Update("secure_viewed_at", at).Error
}
