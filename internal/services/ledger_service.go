package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
)

const (
	DefaultLedgerPageSize = 100
	MaxLedgerPageSize     = 1000

	verifyBatchSize = 500
)

type ledgerService struct {
	repo   repositories.Repository
	gate   *Gate
	logger *slog.Logger
}

func NewLedgerService(repo repositories.Repository, gate *Gate, logger *slog.Logger) LedgerService {
	return &ledgerService{
		repo:   repo,
		gate:   gate,
		logger: logger,
	}
}

func (s *ledgerService) GetLedger(ctx context.Context, caller models.Address, fromSeq uint64, limit int) ([]*models.LedgerEntry, error) {
	if fromSeq == 0 {
		fromSeq = 1
	}
	if limit <= 0 {
		limit = DefaultLedgerPageSize
	}
	if limit > MaxLedgerPageSize {
		limit = MaxLedgerPageSize
	}

	var entries []*models.LedgerEntry
	err := s.gate.View(func() error {
		if err := requireAdmin(ctx, s.repo, nil, caller); err != nil {
			return err
		}
		var err error
		entries, err = s.repo.Ledger().List(ctx, nil, fromSeq, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// VerifyLedger walks the chain from genesis and stops at the first entry
// whose sequence, link or hash does not check out
func (s *ledgerService) VerifyLedger(ctx context.Context, caller models.Address) (*models.LedgerVerification, error) {
	var result *models.LedgerVerification
	err := s.gate.View(func() error {
		if err := requireAdmin(ctx, s.repo, nil, caller); err != nil {
			return err
		}
		var err error
		result, err = verifyChain(ctx, s.repo.Ledger())
		return err
	})
	if err != nil {
		return nil, err
	}

	if !result.Valid {
		s.logger.Error("Ledger verification failed", "broken_at", *result.BrokenAt, "reason", result.Reason)
	}
	return result, nil
}

func verifyChain(ctx context.Context, ledger repositories.LedgerRepository) (*models.LedgerVerification, error) {
	result := &models.LedgerVerification{Valid: true}
	expectedSeq, prevHash := uint64(1), models.GenesisPrevHash

	broken := func(seq uint64, reason string) *models.LedgerVerification {
		result.Valid = false
		result.BrokenAt = &seq
		result.Reason = reason
		return result
	}

	for {
		batch, err := ledger.List(ctx, nil, expectedSeq, verifyBatchSize)
		if err != nil {
			return nil, err
		}
		for _, entry := range batch {
			switch {
			case entry.Seq != expectedSeq:
				return broken(expectedSeq, fmt.Sprintf("missing entry, found seq %d", entry.Seq)), nil
			case entry.PrevHash != prevHash:
				return broken(entry.Seq, "previous hash does not match"), nil
			case entry.ComputeHash() != entry.Hash:
				return broken(entry.Seq, "entry hash does not match its contents"), nil
			}
			result.Length = entry.Seq
			result.HeadHash = entry.Hash
			prevHash = entry.Hash
			expectedSeq++
		}
		if len(batch) < verifyBatchSize {
			return result, nil
		}
	}
}
