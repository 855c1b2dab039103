package mysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Sync log statuses.
const (
	SyncStatusDelivered  = "DELIVERED"
	SyncStatusSuppressed = "SUPPRESSED"
	SyncStatusAborted    = "ABORTED"
)

// StatusSyncLog is one audited status sync.
type StatusSyncLog struct {
	ID            uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	RequestID     string         `gorm:"column:request_id;type:varchar(64);not null;index:idx_request_id"`
	OrderIDUnique string         `gorm:"column:order_id_unique;type:varchar(64);index:idx_order_id_unique"`
	Status        string         `gorm:"column:status;type:varchar(16);not null"`
	Attempts      int            `gorm:"column:attempts;not null;default:0"`
	UpsertFailed  bool           `gorm:"column:upsert_failed;not null"`
	Payload       datatypes.JSON `gorm:"column:payload;type:json"`
	ErrorMessage  string         `gorm:"column:error_message;type:text"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null;index:idx_created_at"`
}

func (StatusSyncLog) TableName() string {
	return "status_sync_logs"
}

// SyncLogDAO writes and reads the status sync audit log.
type SyncLogDAO struct {
	db *gorm.DB
}

func NewSyncLogDAO(dsn string) (*SyncLogDAO, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewSyncLogDAOWithDB(db), nil
}

func NewSyncLogDAOWithDB(db *gorm.DB) *SyncLogDAO {
	return &SyncLogDAO{db: db}
}

// Record inserts entry. CreatedAt is filled in when zero.
func (dao *SyncLogDAO) Record(ctx context.Context, entry *StatusSyncLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := dao.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record sync log: %w", err)
	}
	return nil
}

// FindByRequestID lists the entries of one request, oldest first.
func (dao *SyncLogDAO) FindByRequestID(ctx context.Context, requestID string) ([]StatusSyncLog, error) {
	var logs []StatusSyncLog
	result := dao.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("id").
		Find(&logs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query sync logs: %w", result.Error)
	}
	return logs, nil
}

func (dao *SyncLogDAO) Close() error {
	sqlDB, err := dao.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
