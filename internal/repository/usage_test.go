package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAccumulates(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	repo := NewUsageRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, user.ID, "2026-08-29", UsageDelta{
		LLMTokens:  100,
		TTSChars:   50,
		STTSeconds: 2.5,
		CostUSD:    0.01,
		NewSession: true,
	}))
	require.NoError(t, repo.Record(ctx, user.ID, "2026-08-29", UsageDelta{
		LLMTokens:  40,
		TTSChars:   20,
		STTSeconds: 1.5,
		CostUSD:    0.005,
	}))

	usage, err := repo.Get(ctx, user.ID, "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, 1, usage.TotalSessions)
	assert.Equal(t, 140, usage.TotalTokens)
	assert.Equal(t, 140, usage.LLMTokens)
	assert.Equal(t, 70, usage.TTSChars)
	assert.InDelta(t, 4.0, usage.STTSeconds, 1e-9)
	assert.InDelta(t, 0.015, usage.TotalCostUSD, 1e-9)
}

func TestRecordSeparatesDays(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	repo := NewUsageRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, user.ID, "2026-08-28", UsageDelta{LLMTokens: 10}))
	require.NoError(t, repo.Record(ctx, user.ID, "2026-08-29", UsageDelta{LLMTokens: 20}))

	entries, err := repo.ListSince(ctx, user.ID, "2026-08-28")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2026-08-29", entries[0].Day)
	assert.Equal(t, 20, entries[0].TotalTokens)
	assert.Equal(t, "2026-08-28", entries[1].Day)
	assert.Equal(t, 10, entries[1].TotalTokens)
}

func TestRecordConcurrentIncrements(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	repo := NewUsageRepository(db)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Record(ctx, user.ID, "2026-08-29", UsageDelta{LLMTokens: 1, CostUSD: 0.001})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	usage, err := repo.Get(ctx, user.ID, "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, workers, usage.TotalTokens)
	assert.InDelta(t, float64(workers)*0.001, usage.TotalCostUSD, 1e-9)
}

func TestSummary(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	repo := NewUsageRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, user.ID, "2026-08-28", UsageDelta{LLMTokens: 10, CostUSD: 0.01, NewSession: true}))
	require.NoError(t, repo.Record(ctx, user.ID, "2026-08-29", UsageDelta{LLMTokens: 30, CostUSD: 0.02, NewSession: true}))

	summary, err := repo.Summary(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalSessions)
	assert.Equal(t, 40, summary.TotalTokens)
	assert.Equal(t, 2, summary.DaysActive)
	assert.InDelta(t, 0.03, summary.TotalCostUSD, 1e-9)
}
