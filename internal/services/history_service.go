package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"leasedesk/internal/models"
	"leasedesk/internal/repositories"
)

// FieldChange is one tracked field that differs between two consecutive
// snapshots.
type FieldChange struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// SnapshotDiff is the field-level delta introduced by one snapshot relative
// to the one before it.
type SnapshotDiff struct {
	SnapshotID uint          `json:"snapshot_id"`
	Changes    []FieldChange `json:"changes"`
}

// ProductHistory is the reconstructed history view of one product: the full
// ordered trail plus a diff per snapshot after the first.
type ProductHistory struct {
	AdsID     string                 `json:"ads_id"`
	Snapshots []models.AuditSnapshot `json:"snapshots"`
	Diffs     []SnapshotDiff         `json:"diffs"`
}

// trackedFields is the fixed set of fields the history view diffs over.
// Values are rendered to canonical strings so nil-vs-present transitions
// compare as changed.
var trackedFields = []struct {
	name string
	get  func(models.ProductState) string
}{
	{"brand", func(s models.ProductState) string { return s.Brand }},
	{"model", func(s models.ProductState) string { return s.Model }},
	{"productType", func(s models.ProductState) string { return s.ProductType }},
	{"condition", func(s models.ProductState) string { return s.Condition }},
	{"costPrice", func(s models.ProductState) string { return s.CostPrice.StringFixed(2) }},
	{"specifications", func(s models.ProductState) string { return s.Specifications }},
	{"prodId", func(s models.ProductState) string { return s.ProdID }},
	{"prodHealth", func(s models.ProductState) string { return string(s.ProdHealth) }},
	{"prodStatus", func(s models.ProductState) string { return string(s.ProdStatus) }},
	{"orderStatus", func(s models.ProductState) string { return string(s.OrderStatus) }},
	{"maintenanceStatus", func(s models.ProductState) string { return s.MaintenanceStatus }},
	{"lastMaintenanceDate", func(s models.ProductState) string { return formatMaybeTime(s.LastMaintenanceDate) }},
}

func formatMaybeTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// HistoryService reconstructs product audit trails. Results are cached by
// ADS ID; the write paths invalidate the key, so a cache hit is never stale.
type HistoryService struct {
	auditRepo  repositories.AuditRepository
	trailCache TrailCache
}

// NewHistoryService creates a new HistoryService. The cache may be nil.
func NewHistoryService(auditRepo repositories.AuditRepository, trailCache TrailCache) *HistoryService {
	return &HistoryService{
		auditRepo:  auditRepo,
		trailCache: trailCache,
	}
}

// GetProductHistory returns the ordered snapshot trail for one product with
// field-level diffs between consecutive entries. The reconstruction is a
// pure function of the stored trail: invoking it again on an unchanged trail
// yields identical output.
func (s *HistoryService) GetProductHistory(ctx context.Context, adsID string) (*ProductHistory, error) {
	if s.trailCache != nil {
		if payload, ok, err := s.trailCache.Get(ctx, adsID); err != nil {
			log.Printf("Warning: history cache read failed for product %s: %v", adsID, err)
		} else if ok {
			var history ProductHistory
			if err := json.Unmarshal(payload, &history); err == nil {
				return &history, nil
			}
			log.Printf("Warning: discarding corrupt history cache entry for product %s", adsID)
		}
	}

	snapshots, err := s.auditRepo.GetByAdsID(adsID)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("no history found for product %s", adsID)
	}

	history := &ProductHistory{
		AdsID:     adsID,
		Snapshots: snapshots,
		Diffs:     buildDiffs(snapshots),
	}

	if s.trailCache != nil {
		if payload, err := json.Marshal(history); err == nil {
			if err := s.trailCache.Set(ctx, adsID, payload); err != nil {
				log.Printf("Warning: history cache write failed for product %s: %v", adsID, err)
			}
		}
	}
	return history, nil
}

// buildDiffs computes the deltas for each consecutive snapshot pair. The
// first entry (the CREATED snapshot) has no diff.
func buildDiffs(snapshots []models.AuditSnapshot) []SnapshotDiff {
	diffs := make([]SnapshotDiff, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		previous, current := snapshots[i-1], snapshots[i]
		diff := SnapshotDiff{SnapshotID: current.ID}
		for _, field := range trackedFields {
			from := field.get(previous.ProductState)
			to := field.get(current.ProductState)
			if from != to {
				diff.Changes = append(diff.Changes, FieldChange{Field: field.name, From: from, To: to})
			}
		}
		diffs = append(diffs, diff)
	}
	return diffs
}
