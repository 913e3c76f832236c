package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskgate/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingPrunesDeadRefreshTokens(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "alice", "a@x.com", "longpass1")
	env.register(t, "bob", "b@x.com", "longpass1")

	// alice: one revoked row after the second login, one live row.
	_, err := env.auth.Login(ctx, "a@x.com", "longpass1")
	require.NoError(t, err)
	_, err = env.auth.Login(ctx, "a@x.com", "longpass1")
	require.NoError(t, err)

	// bob: a single row that will expire.
	_, err = env.auth.Login(ctx, "b@x.com", "longpass1")
	require.NoError(t, err)

	hk := NewHousekeepingService(env.store, slogx.Discard(), time.Minute)
	hk.Now = env.clock.Now

	n, err := hk.PruneRefreshTokens(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.Equal(t, 1, env.liveTokens(t, "a@x.com"))

	env.clock.Advance(env.codec.RefreshTTL() + time.Second)
	n, err = hk.PruneRefreshTokens(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestHousekeepingStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)

	hk := NewHousekeepingService(env.store, slogx.Discard(), 0)
	require.Equal(t, time.Hour, hk.Interval)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hk.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("housekeeping did not stop")
	}

	stop := hk.Go(context.Background())
	stop()
}
