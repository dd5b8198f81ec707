package repository

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clearpointhq/client-portal-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockRepo(t *testing.T) (ActionItemRepository, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewActionItemRepository(db), mock
}

func itemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "status", "priority", "created_by"}).
		AddRow(1, "Collect signed engagement letter", "PENDING", "HIGH", 7)
}

// TestInTransaction_RollsBackWhenHistoryInsertFails verifies that a failed
// ledger append rolls back the item update made in the same transaction.
func TestInTransaction_RollsBackWhenHistoryInsertFails(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `action_items`").WillReturnRows(itemRows())
	mock.ExpectExec("UPDATE `action_items` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `action_status_histories`").
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err := repo.InTransaction(func(store TransitionStore) error {
		item, err := store.ItemForUpdate(1)
		if err != nil {
			return err
		}

		item.Status = models.ActionStatusInProgress
		if err := store.SaveItem(item); err != nil {
			return err
		}

		return store.AppendHistory(&models.ActionStatusHistory{
			ActionItemID: item.ID,
			NewStatus:    models.ActionStatusInProgress,
			Summary:      "Started work",
			CreatedBy:    7,
		})
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestInTransaction_CommitsOnSuccess verifies the happy path commits.
func TestInTransaction_CommitsOnSuccess(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `action_items`").WillReturnRows(itemRows())
	mock.ExpectExec("UPDATE `action_items` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `action_status_histories`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.InTransaction(func(store TransitionStore) error {
		item, err := store.ItemForUpdate(1)
		if err != nil {
			return err
		}

		item.Status = models.ActionStatusCompleted
		if err := store.SaveItem(item); err != nil {
			return err
		}

		return store.AppendHistory(&models.ActionStatusHistory{
			ActionItemID: item.ID,
			NewStatus:    models.ActionStatusCompleted,
			Summary:      "Wrapped up",
			CreatedBy:    7,
		})
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestItemForUpdate_LocksRowOnMySQL verifies the row lock clause is applied
// on dialects that support it.
func TestItemForUpdate_LocksRowOnMySQL(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `action_items` (.+) FOR UPDATE").WillReturnRows(itemRows())
	mock.ExpectCommit()

	err := repo.InTransaction(func(store TransitionStore) error {
		_, err := store.ItemForUpdate(1)
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
