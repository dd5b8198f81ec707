package repository

import (
	"time"

	"github.com/clearpointhq/client-portal-api/internal/models"
)

// ActionItemFilter holds filtering options for listing action items
type ActionItemFilter struct {
	ProjectID  *uint64
	Status     *models.ActionItemStatus
	AssignedTo *uint64

	// ClientViewerID restricts the result to items a client caller may see:
	// items assigned to them, or client-visible items on their own projects.
	ClientViewerID *uint64

	Page     int
	PageSize int
}

// TransitionStore is the persistence surface available inside a status
// transition transaction. All calls either commit together or roll back
// together with the enclosing InTransaction.
type TransitionStore interface {
	// ItemForUpdate loads an action item with its project, locking the row
	// for the duration of the transaction where the dialect supports it.
	ItemForUpdate(id uint64) (*models.ActionItem, error)

	// SaveItem persists changes to an existing item
	SaveItem(item *models.ActionItem) error

	// CreateItem inserts a new item (used for follow-up spawning)
	CreateItem(item *models.ActionItem) error

	// AppendHistory appends one immutable ledger row
	AppendHistory(entry *models.ActionStatusHistory) error
}

// ActionItemRepository defines the interface for action item data access
type ActionItemRepository interface {
	// FindByID finds an action item by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.ActionItem, error)

	// List retrieves action items with filtering and pagination
	List(filter ActionItemFilter) ([]models.ActionItem, int64, error)

	// Create creates a new action item
	Create(item *models.ActionItem) error

	// Update updates an action item
	Update(item *models.ActionItem) error

	// InTransaction runs fn inside one atomic transaction. Any error from
	// fn rolls back every write made through the provided store.
	InTransaction(fn func(TransitionStore) error) error
}

// VaultStore is the persistence surface available inside a secure-response
// read transaction (used for delete-on-read retention).
type VaultStore interface {
	// ResponseForUpdate loads the vault row for an item, locked where supported
	ResponseForUpdate(actionItemID uint64) (*models.ActionSecureResponse, error)

	// DeleteResponse removes the vault row
	DeleteResponse(actionItemID uint64) error

	// StampViewed records the first successful view on the action item
	StampViewed(actionItemID uint64, at time.Time) error
}

// SecureResponseRepository defines the interface for vault row access
type SecureResponseRepository interface {
	// Upsert replaces the single vault slot for an action item
	Upsert(resp *models.ActionSecureResponse) error

	// FindByActionItemID finds the vault row for an item
	FindByActionItemID(actionItemID uint64) (*models.ActionSecureResponse, error)

	// DeleteByActionItemID removes the vault row (privileged delete)
	DeleteByActionItemID(actionItemID uint64) error

	// DeleteExpired purges rows whose EXPIRE_AFTER_HOURS window has passed,
	// returning the number of rows removed.
	DeleteExpired(now time.Time) (int64, error)

	// InTransaction runs fn inside one atomic transaction
	InTransaction(fn func(VaultStore) error) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// FindWithTasksAndMilestones loads the aggregate consumed by the
	// progress calculator.
	FindWithTasksAndMilestones(id uint64) (*models.Project, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create creates a new notification
	Create(n *models.Notification) error

	// ListByUserID lists a user's notifications, newest first
	ListByUserID(userID uint64, page, pageSize int) ([]models.Notification, int64, error)

	// MarkRead marks a notification as read if it belongs to the user
	MarkRead(id, userID uint64, at time.Time) error
}

// ActivityLogRepository defines the interface for activity trail access
type ActivityLogRepository interface {
	// Create appends one activity row
	Create(entry *models.ActivityLog) error

	// ListByEntity lists activity for one entity, newest first
	ListByEntity(entityType string, entityID uint64, limit int) ([]models.ActivityLog, error)
}
