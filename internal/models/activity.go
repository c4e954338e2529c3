package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog captures auditable events in the evaluation engine: mark
// submissions, escalations, approval transitions and improvement-exam
// creation.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null" json:"actor_id"`
	ActorKind  string            `gorm:"size:32;not null" json:"actor_kind"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
