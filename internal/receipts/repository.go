package receipts

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository stores submission receipts
type Repository interface {
	Create(ctx context.Context, receipt *Receipt) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Receipt, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a postgres-backed repository and migrates its table.
func NewGormRepository(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(&Receipt{}); err != nil {
		return nil, fmt.Errorf("failed to migrate receipts: %w", err)
	}
	return &gormRepository{db: db}, nil
}

func (r *gormRepository) Create(ctx context.Context, receipt *Receipt) error {
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *gormRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Receipt, error) {
	out := []Receipt{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// memoryRepository keeps receipts in process memory when no database is configured.
type memoryRepository struct {
	mu       sync.RWMutex
	receipts []Receipt
}

// NewMemoryRepository creates an in-memory repository
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(ctx context.Context, receipt *Receipt) error {
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts = append(r.receipts, *receipt)
	return nil
}

func (r *memoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Receipt{}
	for _, rc := range r.receipts {
		if rc.UserID == userID {
			out = append(out, rc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
