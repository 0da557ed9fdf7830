package monitoring

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGoroutineMonitor_Check(t *testing.T) {
	m := NewGoroutineMonitor(zerolog.Nop(), 0, 0)
	assert.Equal(t, defaultCheckInterval, m.checkInterval)
	assert.Equal(t, defaultAlertThreshold, m.alertThreshold)

	games := 3
	m.Watch("active_games", func() int { return games })

	block := make(chan struct{})
	defer close(block)
	for i := 0; i < 5; i++ {
		go func() { <-block }()
	}

	m.Check()
	got := m.GetMetrics()
	assert.GreaterOrEqual(t, got.Current, got.Baseline+5)
	assert.Equal(t, got.Current, got.Peak)
	assert.Equal(t, map[string]int{"active_games": 3}, got.Gauges)

	games = 7
	m.Check()
	assert.Equal(t, 7, m.GetMetrics().Gauges["active_games"])
}

func TestGoroutineMonitor_StopIsIdempotent(t *testing.T) {
	m := NewGoroutineMonitor(zerolog.Nop(), 0, 0)
	m.Start()
	m.Stop()
	assert.NotPanics(t, m.Stop)
}
