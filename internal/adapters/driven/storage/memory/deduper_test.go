package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduper_ClaimWithinWindow(t *testing.T) {
	d := NewDeduper()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := d.Claim(ctx, "heat_surge:warning", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(5 * time.Minute)
	ok, err = d.Claim(ctx, "heat_surge:warning", 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "repeat inside the window is suppressed")

	ok, err = d.Claim(ctx, "flow_peak:danger", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "other keys are independent")
}

func TestDeduper_ClaimAfterExpiry(t *testing.T) {
	d := NewDeduper()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = d.Claim(ctx, "k", time.Minute)
	now = now.Add(time.Minute)

	ok, err := d.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, d.claims, 1)
}

func TestDeduper_Concurrent(t *testing.T) {
	d := NewDeduper()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := d.Claim(ctx, "same", time.Hour)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}
