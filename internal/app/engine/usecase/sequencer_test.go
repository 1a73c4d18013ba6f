package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-payments-engine/internal/app/engine/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/engine/usecase"
)

func TestSequencer_SubmitInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seq := usecase.NewSequencer(newProcessor(), 8)
	seq.Start(ctx)

	require.NoError(t, seq.Submit(ctx, domain.NewDeposit(1, 1, 1.0)))
	require.NoError(t, seq.Submit(ctx, domain.NewDeposit(1, 2, 2.0)))
	require.NoError(t, seq.Submit(ctx, domain.NewDispute(1, 2)))
	assert.ErrorIs(t, seq.Submit(ctx, domain.NewDispute(1, 2)), domain.ErrTransferConflict)

	snap, err := seq.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, 3.0, snap[0].Account.Total)
	assert.Equal(t, 2.0, snap[0].Account.Held)
}

func TestSequencer_ConcurrentSubmitters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seq := usecase.NewSequencer(newProcessor(), 16)
	seq.Start(ctx)

	const clients = 10
	const perClient = 100

	var wg sync.WaitGroup
	wg.Add(clients)
	for c := 0; c < clients; c++ {
		go func(c int) {
			defer wg.Done()
			for i := 0; i < perClient; i++ {
				tx := domain.TransferID(c*perClient + i)
				assert.NoError(t, seq.Submit(ctx, domain.NewDeposit(domain.ClientID(c), tx, 1.0)))
			}
		}(c)
	}
	wg.Wait()

	snap, err := seq.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, clients)
	for _, s := range snap {
		assert.Equal(t, float64(perClient), s.Account.Total)
	}
}

func TestSequencer_StoppedAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	seq := usecase.NewSequencer(newProcessor(), 1)
	seq.Start(ctx)
	require.NoError(t, seq.Submit(context.Background(), domain.NewDeposit(1, 1, 1.0)))

	cancel()
	<-seq.Done()

	err := seq.Submit(context.Background(), domain.NewDeposit(1, 2, 1.0))
	assert.ErrorIs(t, err, usecase.ErrSequencerStopped)
}

func TestSequencer_SubmitHonorsContext(t *testing.T) {
	seq := usecase.NewSequencer(newProcessor(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := seq.Submit(ctx, domain.NewDeposit(1, 1, 1.0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMutexProcessor_ConcurrentApply(t *testing.T) {
	m := usecase.NewMutexProcessor(newProcessor())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, m.Apply(domain.NewDeposit(7, domain.TransferID(i), 0.5)))
		}(i)
	}
	wg.Wait()

	snap := m.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 25.0, snap[0].Account.Total)
}

func TestSequencedApplier(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seq := usecase.NewSequencer(newProcessor(), 4)
	seq.Start(ctx)
	a := seq.Applier(ctx)

	require.NoError(t, a.Apply(domain.NewDeposit(1, 1, 2.0)))
	assert.ErrorIs(t, a.Apply(domain.NewWithdrawal(1, 2, 5.0)), domain.ErrInsufficientFunds)
	// 帳務錯誤不算 Sequencer 的錯誤
	assert.NoError(t, a.Err())

	snap := a.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 2.0, snap[0].Account.Total)

	cancel()
	<-seq.Done()
	assert.Nil(t, a.Snapshot())
	assert.Error(t, a.Err())
}
