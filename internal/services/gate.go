package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/evaluation-registry/internal/events"
	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
)

// Block identifies the ledger position a mutation will commit at
type Block struct {
	Seq  uint64
	Time time.Time
}

// MutationFunc applies one registry call inside the gate's transaction and
// returns the payload recorded in the ledger entry. Returning an error rolls
// back every write it made.
type MutationFunc func(tx *gorm.DB, block Block) (interface{}, error)

// Gate serializes registry mutations. Each Execute runs one database
// transaction that also appends the ledger entry, so a call either commits
// together with its entry or leaves nothing behind. Reads go through View so
// they never observe a projection between invalidation and commit.
//
// Events are published after mu is released. pubMu is taken before that
// release so events still leave in seq order.
type Gate struct {
	mu        sync.RWMutex
	pubMu     sync.Mutex
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewGate(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) *Gate {
	return &Gate{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Execute runs fn as the next ledger entry for op
func (g *Gate) Execute(ctx context.Context, op models.LedgerOp, caller models.Address, fn MutationFunc) (*models.LedgerEntry, error) {
	entry, err := g.commit(ctx, op, caller, fn)
	if err != nil {
		return nil, err
	}
	defer g.pubMu.Unlock()

	g.logger.Debug("Ledger entry committed", "seq", entry.Seq, "op", entry.Op, "caller", caller)
	g.publish(ctx, entry)
	return entry, nil
}

// commit returns holding pubMu when it succeeds
func (g *Gate) commit(ctx context.Context, op models.LedgerOp, caller models.Address, fn MutationFunc) (*models.LedgerEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var entry *models.LedgerEntry
	err := g.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		seq, prevHash := uint64(1), models.GenesisPrevHash
		head, err := g.repo.Ledger().Last(ctx, tx)
		switch {
		case err == nil:
			seq, prevHash = head.Seq+1, head.Hash
		case repositories.IsNotFoundError(err):
		default:
			return fmt.Errorf("failed to read ledger head: %w", err)
		}

		block := Block{Seq: seq, Time: models.BlockTimeOf(g.now())}
		payload, err := fn(tx, block)
		if err != nil {
			return err
		}

		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode %s payload: %w", op, err)
		}

		entry = &models.LedgerEntry{
			Seq:       block.Seq,
			Op:        op,
			Caller:    caller,
			Payload:   datatypes.JSON(data),
			PrevHash:  prevHash,
			BlockTime: block.Time,
		}
		entry.Seal()
		return g.repo.Ledger().Append(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	g.pubMu.Lock()
	return entry, nil
}

// View runs a read under the gate's shared lock
func (g *Gate) View(fn func() error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fn()
}

// publish runs after commit; a failure is logged and the state stays committed
func (g *Gate) publish(ctx context.Context, entry *models.LedgerEntry) {
	if g.publisher == nil {
		return
	}
	event := events.NewLedgerEntryEvent(entry)
	if err := g.publisher.Publish(ctx, event); err != nil {
		g.logger.ErrorContext(ctx, "Failed to publish ledger event",
			"seq", entry.Seq, "op", entry.Op, "event_id", event.ID, "error", err)
	}
}
