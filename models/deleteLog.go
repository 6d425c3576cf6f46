package models

import (
	"context"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeleteLog is the append-only audit trail of every hard/soft delete.
// Rows are written inside the deleting transaction, before the delete,
// so a half-committed delete can never lose its audit record.
type DeleteLog struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Timestamp     time.Time `gorm:"autoCreateTime;not null" json:"timestamp"`
	UserId        int       `json:"user_id"`
	Username      string    `gorm:"size:80" json:"username"`
	EntityType    string    `gorm:"size:50;index" json:"entity_type"`
	EntityId      int       `json:"entity_id"`
	Description   string    `gorm:"size:255" json:"description"`
	CorrelationId string    `gorm:"size:64" json:"correlation_id"`
}

// LogDelete appends an audit row using the caller's transaction. No commit here.
func LogDelete(ctx context.Context, tx *gorm.DB, actor Actor, entityType string, entityId int, description string) error {
	entry := DeleteLog{
		UserId:        actor.ID,
		Username:      actor.Username,
		EntityType:    entityType,
		EntityId:      entityId,
		Description:   utils.Truncate(description, 255),
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	return tx.WithContext(ctx).Create(&entry).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// GetDeleteHistory returns the most recent audit rows, newest first.
func GetDeleteHistory(ctx context.Context, limit int) ([]*DeleteLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	db := config.GetDB()
	var logs []*DeleteLog
	err := db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
