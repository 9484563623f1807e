// Package audit records admin actions for later review. Writes are
// best-effort: a failed insert is logged, never surfaced to the caller.
package audit

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Log is one recorded admin action.
type Log struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	MosqueID   *snowflake.ID     `gorm:"index:ix_audit_logs_mosque" json:"mosque_id,omitempty"`
	ActorID    *snowflake.ID     `json:"actor_id,omitempty"`
	Action     string            `gorm:"type:text;not null" json:"action"`
	TargetType string            `gorm:"column:target_type;type:text;not null" json:"target_type"`
	TargetID   *string           `gorm:"column:target_id;type:text" json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index:ix_audit_logs_mosque" json:"created_at"`
}

// TableName sets the database table name.
func (Log) TableName() string { return "audit_logs" }

// Entry describes one action to record.
type Entry struct {
	MosqueID   *snowflake.ID
	ActorID    snowflake.ID
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

type Recorder struct {
	db   *gorm.DB
	node *snowflake.Node
	log  *zap.Logger
}

func NewRecorder(db *gorm.DB, node *snowflake.Node, log *zap.Logger) *Recorder {
	return &Recorder{db: db, node: node, log: log.Named("audit")}
}

// Record stores one audit row. Failures are logged and swallowed.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	row := Log{
		ID:         r.node.Generate(),
		MosqueID:   e.MosqueID,
		Action:     e.Action,
		TargetType: e.TargetType,
		Metadata:   datatypes.JSONMap(e.Metadata),
	}
	if row.Metadata == nil {
		row.Metadata = datatypes.JSONMap{}
	}
	if e.ActorID != 0 {
		actor := e.ActorID
		row.ActorID = &actor
	}
	if e.TargetID != "" {
		target := e.TargetID
		row.TargetID = &target
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.log.Warn("audit write failed",
			zap.String("action", e.Action),
			zap.Error(err),
		)
	}
}

// List returns the most recent actions for a mosque.
func (r *Recorder) List(ctx context.Context, mosqueID snowflake.ID, limit int) ([]Log, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []Log
	err := r.db.WithContext(ctx).
		Where("mosque_id = ?", mosqueID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Module provides the audit recorder.
var Module = fx.Module("audit",
	fx.Provide(NewRecorder),
)
