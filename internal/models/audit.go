package models

import "time"

// AuditAction says why a snapshot was recorded.
type AuditAction string

const (
	AuditActionCreated AuditAction = "CREATED"
	AuditActionUpdated AuditAction = "UPDATED"
)

// AuditSnapshot is an immutable record of a product's tracked state at a
// point in time. Snapshots are append-only: they are never mutated or
// deleted, and the history view is reconstructed from them.
type AuditSnapshot struct {
	ID           uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	AdsID        string      `json:"ads_id" gorm:"index;type:varchar(64)"`
	Action       AuditAction `json:"action" gorm:"type:varchar(10)"`
	ProductState `gorm:"embedded"`
	UpdatedBy    string    `json:"updated_by" gorm:"type:varchar(100)"`
	Note         string    `json:"note" gorm:"type:varchar(255)"`
	RecordedAt   time.Time `json:"recorded_at" gorm:"index"`
}

// SnapshotOf captures the current tracked state of a product.
func SnapshotOf(p *Product, action AuditAction, actor, note string, at time.Time) AuditSnapshot {
	return AuditSnapshot{
		AdsID:        p.AdsID,
		Action:       action,
		ProductState: p.ProductState,
		UpdatedBy:    actor,
		Note:         note,
		RecordedAt:   at,
	}
}
