package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/evaluation-registry/internal/events"
	"github.com/SAP-F-2025/evaluation-registry/internal/models"
)

func runWorkload(t *testing.T, env *testEnv) {
	t.Helper()
	id := env.seed(t)
	env.mark(t, id, studentAddr)
	_, err := env.sm.Evaluation().SubmitEvaluation(env.ctx, studentAddr, id, &SubmitEvaluationRequest{Score: 4, Comment: "ok"})
	require.NoError(t, err)
	_, err = env.sm.Course().UpdateCourse(env.ctx, adminAddr, id, &CourseRequest{Name: "Math II", Credits: 5, Teacher: teacherAddr.String()})
	require.NoError(t, err)
}

func TestVerifyLedger(t *testing.T) {
	env := newTestEnv(t)
	runWorkload(t, env)

	result, err := env.sm.Ledger().VerifyLedger(env.ctx, adminAddr)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.EqualValues(t, env.ledgerLength(t), result.Length)
	assert.NotEmpty(t, result.HeadHash)
	assert.Nil(t, result.BrokenAt)

	_, err = env.sm.Ledger().VerifyLedger(env.ctx, teacherAddr)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyLedgerDetectsTampering(t *testing.T) {
	env := newTestEnv(t)
	runWorkload(t, env)

	err := env.db.Model(&models.LedgerEntry{}).
		Where("seq = ?", 3).
		Update("payload", datatypes.JSON(`{"address":"0xstudent1","id":"S001","role":"teacher"}`)).Error
	require.NoError(t, err)

	result, err := env.sm.Ledger().VerifyLedger(env.ctx, adminAddr)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotNil(t, result.BrokenAt)
	assert.EqualValues(t, 3, *result.BrokenAt)
	assert.EqualValues(t, 2, result.Length)
}

func TestVerifyLedgerDetectsRelinking(t *testing.T) {
	env := newTestEnv(t)
	runWorkload(t, env)

	// a rewritten entry with a fresh hash still breaks the next link
	var entry models.LedgerEntry
	require.NoError(t, env.db.Where("seq = ?", 4).First(&entry).Error)
	entry.Payload = datatypes.JSON(`{"forged":true}`)
	entry.Seal()
	require.NoError(t, env.db.Save(&entry).Error)

	result, err := env.sm.Ledger().VerifyLedger(env.ctx, adminAddr)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotNil(t, result.BrokenAt)
	assert.EqualValues(t, 5, *result.BrokenAt)
}

func TestGetLedger(t *testing.T) {
	env := newTestEnv(t)
	runWorkload(t, env)

	entries, err := env.sm.Ledger().GetLedger(env.ctx, adminAddr, 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, env.ledgerLength(t), len(entries))

	for i, entry := range entries {
		assert.EqualValues(t, i+1, entry.Seq)
		if i > 0 {
			assert.Equal(t, entries[i-1].Hash, entry.PrevHash)
		}
	}
	assert.Equal(t, models.OpGenesis, entries[0].Op)
	assert.Equal(t, models.OpUpdateCourse, entries[len(entries)-1].Op)

	page, err := env.sm.Ledger().GetLedger(env.ctx, adminAddr, 3, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.EqualValues(t, 3, page[0].Seq)

	_, err = env.sm.Ledger().GetLedger(env.ctx, studentAddr, 0, 0)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCommittedEntriesArePublished(t *testing.T) {
	env := newTestEnv(t)
	runWorkload(t, env)

	_, err := env.sm.Course().AddCourse(env.ctx, studentAddr, &CourseRequest{Name: "X", Credits: 1, Teacher: teacherAddr.String()})
	require.ErrorIs(t, err, ErrUnauthorized)

	published := env.publisher.GetPublishedEvents()
	require.EqualValues(t, env.ledgerLength(t), len(published), "one event per committed entry, none for rejected calls")

	for i, event := range published {
		assert.Equal(t, events.LedgerEntryCommitted, event.Type)
		data, ok := event.Data.(events.LedgerEntryEvent)
		require.True(t, ok)
		assert.EqualValues(t, i+1, data.Seq)
	}
}

func TestPublishFailureKeepsCommit(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.FailWith(errors.New("broker unavailable"))

	env.register(t, studentAddr, "S001", "student")
	assert.EqualValues(t, 2, env.ledgerLength(t))
	assert.Len(t, env.publisher.GetPublishedEvents(), 1, "only genesis was published")

	_, err := env.sm.Access().GetCurrentUser(env.ctx, studentAddr)
	assert.NoError(t, err)
}

func TestConcurrentMutationsStayChained(t *testing.T) {
	env := newTestEnv(t)
	id := env.seed(t)

	const n = 12
	for i := 0; i < n; i++ {
		addr := models.Address(fmt.Sprintf("0xs%02d", i))
		env.register(t, addr, fmt.Sprintf("C%02d", i), "student")
		env.mark(t, id, addr)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n*2)
	for i := 0; i < n; i++ {
		addr := models.Address(fmt.Sprintf("0xs%02d", i))
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := env.sm.Evaluation().SubmitEvaluation(env.ctx, addr, id, &SubmitEvaluationRequest{Score: 3})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := env.sm.Evaluation().SubmitEvaluation(env.ctx, addr, id, &SubmitEvaluationRequest{Score: 4})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, duplicates := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyEvaluated):
			duplicates++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, n, succeeded)
	assert.Equal(t, n, duplicates)

	list, err := env.sm.Evaluation().GetCourseEvaluations(env.ctx, teacherAddr, id)
	require.NoError(t, err)
	assert.Len(t, list, n)

	result, err := env.sm.Ledger().VerifyLedger(env.ctx, adminAddr)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}
