package service

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/ayo6706/retail-ledger/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultAuditCapacity = 1000

// AuditService keeps an append-only trail of staff and lifecycle actions.
// The oldest records are dropped once capacity is reached.
type AuditService struct {
	mu       sync.RWMutex
	records  []models.AuditRecord
	capacity int
}

func NewAuditService(capacity int) *AuditService {
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	return &AuditService{capacity: capacity}
}

// Write stores a single immutable audit record.
func (s *AuditService) Write(ctx context.Context, entityType string, entityID int, actor, action, prevState, nextState string, metadata map[string]any) {
	if s == nil {
		return
	}
	rec := models.AuditRecord{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		Action:     action,
		PrevState:  prevState,
		NextState:  nextState,
		CreatedAt:  time.Now().UTC(),
	}
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			zap.L().Warn("marshal audit metadata", zap.Error(err), zap.String("action", action))
		} else {
			rec.Metadata = raw
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) >= s.capacity {
		s.records = slices.Delete(s.records, 0, len(s.records)-s.capacity+1)
	}
	s.records = append(s.records, rec)
}

// Recent returns up to limit records, newest first.
func (s *AuditService) Recent(ctx context.Context, limit int) []models.AuditRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]models.AuditRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out
}
