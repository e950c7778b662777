package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"gorm.io/gorm"
)

type LedgerPostgreSQL struct {
	db *gorm.DB
}

func NewLedgerPostgreSQL(db *gorm.DB) repositories.LedgerRepository {
	return &LedgerPostgreSQL{db: db}
}

func (l *LedgerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

// Append inserts a sealed entry. The seq primary key rejects a second
// writer racing for the same position.
func (l *LedgerPostgreSQL) Append(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) error {
	if entry.Hash == "" {
		return fmt.Errorf("ledger entry %d is not sealed", entry.Seq)
	}
	if err := l.getDB(tx).WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append ledger entry %d: %w", entry.Seq, err)
	}
	return nil
}

func (l *LedgerPostgreSQL) Last(ctx context.Context, tx *gorm.DB) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := l.getDB(tx).WithContext(ctx).Order("seq DESC").First(&entry).Error; err != nil {
		return nil, wrapNotFound(err, "failed to get ledger head")
	}
	return &entry, nil
}

func (l *LedgerPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := l.getDB(tx).WithContext(ctx).Model(&models.LedgerEntry{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return count, nil
}

func (l *LedgerPostgreSQL) List(ctx context.Context, tx *gorm.DB, fromSeq uint64, limit int) ([]*models.LedgerEntry, error) {
	entries := make([]*models.LedgerEntry, 0)
	query := l.getDB(tx).WithContext(ctx).
		Where("seq >= ?", fromSeq).
		Order("seq ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}
