package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
)

const (
	EventSource  = "evaluation-registry"
	EventVersion = "1.0"

	// DefaultTopic carries one message per committed ledger entry
	DefaultTopic = "registry.ledger"

	LedgerEntryCommitted = "registry.ledger.committed"
)

// Event is the envelope published for every committed mutation
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// LedgerEntryEvent is the Data of a LedgerEntryCommitted event
type LedgerEntryEvent struct {
	Seq       uint64          `json:"seq"`
	Op        models.LedgerOp `json:"op"`
	Caller    models.Address  `json:"caller"`
	Payload   json.RawMessage `json:"payload"`
	PrevHash  string          `json:"prev_hash"`
	Hash      string          `json:"hash"`
	BlockTime time.Time       `json:"block_time"`
}

// NewLedgerEntryEvent wraps a sealed ledger entry
func NewLedgerEntryEvent(entry *models.LedgerEntry) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      LedgerEntryCommitted,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data: LedgerEntryEvent{
			Seq:       entry.Seq,
			Op:        entry.Op,
			Caller:    entry.Caller,
			Payload:   json.RawMessage(entry.Payload),
			PrevHash:  entry.PrevHash,
			Hash:      entry.Hash,
			BlockTime: entry.BlockTime,
		},
	}
}

// EventPublisher publishes registry events to a message broker
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
