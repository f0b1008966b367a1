package postgres

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	down  atomic.Bool
	calls atomic.Int32
}

func (f *fakePinger) Ping(context.Context) error {
	f.calls.Add(1)
	if f.down.Load() {
		return errors.New("dial tcp: connection refused")
	}
	return nil
}

func TestMonitor_CheckTracksTransitions(t *testing.T) {
	db := &fakePinger{}
	m := NewMonitor(db, time.Second, nil)
	assert.False(t, m.Available(), "no disponible antes del primer ping")

	assert.True(t, m.Check(context.Background()))
	assert.True(t, m.Available())

	db.down.Store(true)
	assert.False(t, m.Check(context.Background()))
	assert.False(t, m.Available())

	db.down.Store(false)
	assert.True(t, m.Check(context.Background()))
}

func TestMonitor_StartPollsUntilStop(t *testing.T) {
	db := &fakePinger{}
	m := NewMonitor(db, 10*time.Millisecond, nil)
	m.Start(context.Background())
	assert.True(t, m.Available())

	db.down.Store(true)
	assert.Eventually(t, func() bool { return !m.Available() }, time.Second, 5*time.Millisecond)

	m.Stop()
	calls := db.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, db.calls.Load())
}

func TestMonitor_OnChange(t *testing.T) {
	db := &fakePinger{}
	m := NewMonitor(db, time.Second, nil)
	var seen []bool
	m.OnChange(func(up bool) { seen = append(seen, up) })

	m.Check(context.Background())
	db.down.Store(true)
	m.Check(context.Background())

	assert.Equal(t, []bool{true, false}, seen)
}
