package mysql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockSyncLogDAO(t *testing.T) (*SyncLogDAO, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewSyncLogDAOWithDB(gormDB), mock, mockDB
}

func TestSyncLogDAO_Record(t *testing.T) {
	t.Run("inserts entry", func(t *testing.T) {
		dao, mock, mockDB := newMockSyncLogDAO(t)
		defer mockDB.Close()

		mock.ExpectExec("INSERT INTO `status_sync_logs`").
			WillReturnResult(sqlmock.NewResult(7, 1))

		entry := &StatusSyncLog{
			RequestID:     "req-1",
			OrderIDUnique: "1000245",
			Status:        SyncStatusDelivered,
			Attempts:      1,
			UpsertFailed:  true,
			Payload:       datatypes.JSON(`{"status":"complete"}`),
		}
		err := dao.Record(context.Background(), entry)

		require.NoError(t, err)
		assert.Equal(t, uint64(7), entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps given created_at", func(t *testing.T) {
		dao, mock, mockDB := newMockSyncLogDAO(t)
		defer mockDB.Close()

		mock.ExpectExec("INSERT INTO `status_sync_logs`").
			WillReturnResult(sqlmock.NewResult(1, 1))

		at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		entry := &StatusSyncLog{RequestID: "req-1", Status: SyncStatusAborted, CreatedAt: at}
		require.NoError(t, dao.Record(context.Background(), entry))
		assert.Equal(t, at, entry.CreatedAt)
	})

	t.Run("wraps database error", func(t *testing.T) {
		dao, mock, mockDB := newMockSyncLogDAO(t)
		defer mockDB.Close()

		mock.ExpectExec("INSERT INTO `status_sync_logs`").
			WillReturnError(errors.New("connection lost"))

		err := dao.Record(context.Background(), &StatusSyncLog{RequestID: "req-1", Status: SyncStatusSuppressed})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to record sync log")
		assert.Contains(t, err.Error(), "connection lost")
	})
}

func TestSyncLogDAO_FindByRequestID(t *testing.T) {
	dao, mock, mockDB := newMockSyncLogDAO(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{
		"id", "request_id", "order_id_unique", "status", "attempts", "upsert_failed", "payload", "error_message", "created_at",
	}).
		AddRow(1, "req-1", "1000245", SyncStatusSuppressed, 3, false, []byte(`{}`), "magento2 http 503", time.Now()).
		AddRow(2, "req-1", "1000245", SyncStatusDelivered, 1, true, []byte(`{}`), "", time.Now())

	mock.ExpectQuery("SELECT \\* FROM `status_sync_logs` WHERE request_id = \\? ORDER BY id").
		WithArgs("req-1").
		WillReturnRows(rows)

	logs, err := dao.FindByRequestID(context.Background(), "req-1")

	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, SyncStatusSuppressed, logs[0].Status)
	assert.Equal(t, 3, logs[0].Attempts)
	assert.False(t, logs[0].UpsertFailed)
	assert.Equal(t, SyncStatusDelivered, logs[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
