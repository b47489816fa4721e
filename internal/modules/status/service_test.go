package status

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincept/autotrade-bridge/internal/clients/trader"
	"github.com/fincept/autotrade-bridge/internal/events"
)

type healthStub struct {
	health *trader.Health
	err    error
}

func (s *healthStub) GetHealth(ctx context.Context) (*trader.Health, error) {
	return s.health, s.err
}

func TestRefresh(t *testing.T) {
	t.Run("reachable backend fills the snapshot", func(t *testing.T) {
		stub := &healthStub{health: &trader.Health{Status: "ok", Version: "1.4.2", Uptime: "72h"}}
		svc := NewService(stub, nil, zerolog.Nop())

		require.NoError(t, svc.Refresh(context.Background()))

		snap := svc.Current()
		assert.True(t, snap.BackendReachable)
		assert.Equal(t, "ok", snap.BackendStatus)
		assert.Equal(t, "1.4.2", snap.BackendVersion)
		assert.NotEmpty(t, snap.CheckedAt)
	})

	t.Run("unreachable backend degrades, does not error", func(t *testing.T) {
		stub := &healthStub{err: errors.New("connection refused")}
		svc := NewService(stub, nil, zerolog.Nop())

		require.NoError(t, svc.Refresh(context.Background()))

		assert.False(t, svc.Current().BackendReachable)
	})

	t.Run("reachability flip emits an event", func(t *testing.T) {
		bus := events.NewBus()
		mgr := events.NewManager(bus, zerolog.Nop())

		var emitted []*events.Event
		bus.Subscribe(events.BackendStatusChanged, func(e *events.Event) {
			emitted = append(emitted, e)
		})

		stub := &healthStub{health: &trader.Health{Status: "ok"}}
		svc := NewService(stub, mgr, zerolog.Nop())

		require.NoError(t, svc.Refresh(context.Background()))
		require.Len(t, emitted, 1, "first refresh flips from unknown to reachable")
		assert.Equal(t, true, emitted[0].Data["reachable"])

		require.NoError(t, svc.Refresh(context.Background()))
		assert.Len(t, emitted, 1, "no flip, no event")

		stub.health = nil
		stub.err = errors.New("connection refused")
		require.NoError(t, svc.Refresh(context.Background()))
		require.Len(t, emitted, 2)
		assert.Equal(t, false, emitted[1].Data["reachable"])
	})
}
