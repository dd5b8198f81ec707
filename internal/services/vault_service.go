package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clearpointhq/client-portal-api/internal/models"
	"github.com/clearpointhq/client-portal-api/internal/repository"
	"github.com/clearpointhq/client-portal-api/internal/vaultcrypto"
	"gorm.io/gorm"
)

var (
	ErrSecureResponseNotEnabled = errors.New("secure response not enabled for this action item")
	ErrSecureValueRequired      = errors.New("secure response value is required")
	ErrSecureResponseNotFound   = errors.New("no secure response has been submitted")
	ErrEncryptionFailed         = errors.New("failed to encrypt secure response")
	ErrDecryptionFailed         = errors.New("failed to decrypt secure response")
)

// VaultService manages the encrypted single-slot response attached to an
// action item. Plaintext values exist only in memory: they are never
// logged and never recorded in the activity trail.
type VaultService struct {
	itemRepo  repository.ActionItemRepository
	vaultRepo repository.SecureResponseRepository
	userRepo  repository.UserRepository
	cipher    *vaultcrypto.Cipher
	activity  ActivitySink
}

// NewVaultService creates a new VaultService
func NewVaultService(
	itemRepo repository.ActionItemRepository,
	vaultRepo repository.SecureResponseRepository,
	userRepo repository.UserRepository,
	cipher *vaultcrypto.Cipher,
	activity ActivitySink,
) *VaultService {
	return &VaultService{
		itemRepo:  itemRepo,
		vaultRepo: vaultRepo,
		userRepo:  userRepo,
		cipher:    cipher,
		activity:  activity,
	}
}

// Submit encrypts value and stores it in the item's vault slot, replacing
// any prior submission. Concurrent submissions for the same item are
// last-write-wins.
func (s *VaultService) Submit(actionItemID, submitterID uint64, value string) error {
	item, err := s.itemRepo.FindByID(actionItemID, "Project", "Project.Client")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActionItemNotFound
		}
		return fmt.Errorf("failed to load action item: %w", err)
	}

	if !item.RequiresSecureResponse {
		return ErrSecureResponseNotEnabled
	}
	if strings.TrimSpace(value) == "" {
		return ErrSecureValueRequired
	}

	if err := s.authorizeSubmitter(item, submitterID); err != nil {
		return err
	}

	ciphertext, err := s.cipher.Seal([]byte(value))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrEncryptionFailed, "cipher seal failed")
	}

	resp := &models.ActionSecureResponse{
		ActionItemID:  actionItemID,
		EncryptedData: ciphertext,
		SubmittedBy:   submitterID,
	}
	if err := s.vaultRepo.Upsert(resp); err != nil {
		return fmt.Errorf("failed to store secure response: %w", err)
	}

	// Action kind only; the payload never reaches the activity trail.
	s.activity.Record("action_item", actionItemID, "secure_response_submitted", nil, submitterID)

	return nil
}

// authorizeSubmitter allows the item's assignee or the owning project's
// client, matched by the client's registered email, case-insensitively.
func (s *VaultService) authorizeSubmitter(item *models.ActionItem, submitterID uint64) error {
	if item.AssignedTo != nil && *item.AssignedTo == submitterID {
		return nil
	}

	if item.Project != nil && item.Project.Client.Email != "" {
		submitter, err := s.userRepo.FindByID(submitterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAuthorized
			}
			return fmt.Errorf("failed to load submitter: %w", err)
		}
		if strings.EqualFold(submitter.Email, item.Project.Client.Email) {
			return nil
		}
	}

	return ErrNotAuthorized
}

// SecureResponseView is the decrypted payload returned to staff.
type SecureResponseView struct {
	Prompt      string       `json:"prompt"`
	Value       string       `json:"value"`
	SubmittedAt time.Time    `json:"submitted_at"`
	Submitter   *models.User `json:"submitter,omitempty"`
}

// Retrieve decrypts the vault slot for a staff viewer and enforces the
// item's retention policy: EXPIRE_AFTER_VIEW rows are deleted on first
// read, and EXPIRE_AFTER_HOURS rows past their window are treated as
// gone even if the sweep has not purged them yet.
func (s *VaultService) Retrieve(actionItemID, viewerID uint64, viewerRole models.Role) (*SecureResponseView, error) {
	if !viewerRole.IsStaff() {
		return nil, ErrNotAuthorized
	}

	item, err := s.itemRepo.FindByID(actionItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActionItemNotFound
		}
		return nil, fmt.Errorf("failed to load action item: %w", err)
	}
	if !item.RequiresSecureResponse {
		return nil, ErrSecureResponseNotEnabled
	}

	var view SecureResponseView
	err = s.vaultRepo.InTransaction(func(store repository.VaultStore) error {
		row, err := store.ResponseForUpdate(actionItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSecureResponseNotFound
			}
			return fmt.Errorf("failed to load secure response: %w", err)
		}

		if expired(item, row, time.Now()) {
			if err := store.DeleteResponse(actionItemID); err != nil {
				return fmt.Errorf("failed to purge expired secure response: %w", err)
			}
			return ErrSecureResponseNotFound
		}

		plaintext, err := s.cipher.Open(row.EncryptedData)
		if err != nil {
			return ErrDecryptionFailed
		}

		if item.SecureRetentionPolicy == models.RetentionExpireAfterView {
			now := time.Now()
			if err := store.StampViewed(actionItemID, now); err != nil {
				return fmt.Errorf("failed to stamp secure response view: %w", err)
			}
			if err := store.DeleteResponse(actionItemID); err != nil {
				return fmt.Errorf("failed to delete viewed secure response: %w", err)
			}
		}

		view.Value = string(plaintext)
		view.SubmittedAt = row.UpdatedAt

		if submitter, err := s.userRepo.FindByID(row.SubmittedBy); err == nil {
			view.Submitter = submitter
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view.Prompt = item.SecurePrompt

	s.activity.Record("action_item", actionItemID, "secure_response_viewed", nil, viewerID)

	return &view, nil
}

// Delete removes the vault slot. Used for the explicit privileged delete
// that UNTIL_DELETED rows wait for.
func (s *VaultService) Delete(actionItemID, callerID uint64, callerRole models.Role) error {
	if !callerRole.IsStaff() {
		return ErrNotAuthorized
	}

	if _, err := s.vaultRepo.FindByActionItemID(actionItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSecureResponseNotFound
		}
		return fmt.Errorf("failed to load secure response: %w", err)
	}

	if err := s.vaultRepo.DeleteByActionItemID(actionItemID); err != nil {
		return fmt.Errorf("failed to delete secure response: %w", err)
	}

	s.activity.Record("action_item", actionItemID, "secure_response_deleted", nil, callerID)
	return nil
}

// expired reports whether an EXPIRE_AFTER_HOURS row has passed its window,
// measured from the latest submission.
func expired(item *models.ActionItem, row *models.ActionSecureResponse, now time.Time) bool {
	if item.SecureRetentionPolicy != models.RetentionExpireAfterHours {
		return false
	}
	if item.SecureExpireAfterHours == nil {
		return false
	}
	deadline := row.UpdatedAt.Add(time.Duration(*item.SecureExpireAfterHours) * time.Hour)
	return !deadline.After(now)
}
