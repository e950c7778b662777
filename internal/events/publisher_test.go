package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sealedEntry() *models.LedgerEntry {
	entry := &models.LedgerEntry{
		Seq:       4,
		Op:        models.OpAddCourse,
		Caller:    "0xadmin",
		Payload:   datatypes.JSON(`{"id":0}`),
		PrevHash:  models.GenesisPrevHash,
		BlockTime: time.Now(),
	}
	entry.Seal()
	return entry
}

func TestNewLedgerEntryEvent(t *testing.T) {
	entry := sealedEntry()
	event := NewLedgerEntryEvent(entry)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, LedgerEntryCommitted, event.Type)
	assert.Equal(t, EventSource, event.Source)
	assert.Equal(t, EventVersion, event.Version)

	data, ok := event.Data.(LedgerEntryEvent)
	require.True(t, ok)
	assert.Equal(t, entry.Seq, data.Seq)
	assert.Equal(t, entry.Hash, data.Hash)
}

func TestWatermillEventPublisher_InProcess(t *testing.T) {
	publisher, err := NewWatermillEventPublisher(PublisherConfig{}, testLogger())
	require.NoError(t, err)
	defer publisher.Close()
	assert.Equal(t, DefaultTopic, publisher.Topic())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := publisher.Subscribe(ctx)
	require.NoError(t, err)

	event := NewLedgerEntryEvent(sealedEntry())
	require.NoError(t, publisher.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, "addCourse", msg.Metadata.Get("op"))
		assert.Equal(t, "4", msg.Metadata.Get("seq"))

		var decoded Event
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, LedgerEntryCommitted, decoded.Type)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(testLogger())
	ctx := context.Background()

	require.NoError(t, mock.Publish(ctx, NewLedgerEntryEvent(sealedEntry())))
	assert.Len(t, mock.GetPublishedEvents(), 1)

	mock.FailWith(errors.New("broker down"))
	assert.Error(t, mock.Publish(ctx, NewLedgerEntryEvent(sealedEntry())))
	assert.Len(t, mock.GetPublishedEvents(), 1)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
}
