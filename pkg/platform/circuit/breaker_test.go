package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewBreakerStartsClosed(t *testing.T) {
	b := New("audit-store")
	assert.Equal(t, "audit-store", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
	assert.True(t, b.Allow())
}

// Each step is 'F' for a failure or 'S' for a success; open lists the
// expected state after every step.
func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		steps  string
		open   []bool
		opened int
		closed int
	}{
		{
			name:   "opens on the threshold failure",
			opts:   []Option{WithFailureThreshold(3)},
			steps:  "FFF",
			open:   []bool{false, false, true},
			opened: 1,
		},
		{
			name:  "success clears the failure run",
			opts:  []Option{WithFailureThreshold(3)},
			steps: "FFSFF",
			open:  []bool{false, false, false, false, false},
		},
		{
			name:   "needs the full success run to close",
			opts:   []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps:  "FSS",
			open:   []bool{true, true, false},
			opened: 1,
			closed: 1,
		},
		{
			name:   "failure while open restarts the success run",
			opts:   []Option{WithFailureThreshold(1), WithSuccessThreshold(3)},
			steps:  "FSSFSSS",
			open:   []bool{true, true, true, true, true, true, false},
			opened: 1,
			closed: 1,
		},
		{
			name:   "repeat failures while open report no change",
			opts:   []Option{WithFailureThreshold(1)},
			steps:  "FFF",
			open:   []bool{true, true, true},
			opened: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("store", tt.opts...)
			var opened, closed int
			for i, step := range tt.steps {
				var change StateChange
				if step == 'F' {
					_, change = b.RecordFailure()
				} else {
					_, change = b.RecordSuccess()
				}
				if change.Opened {
					opened++
				}
				if change.Closed {
					closed++
				}
				assert.Equal(t, tt.open[i], b.IsOpen(), "after step %d (%c)", i, step)
			}
			assert.Equal(t, tt.opened, opened, "open transitions")
			assert.Equal(t, tt.closed, closed, "close transitions")
		})
	}
}

func TestRecordResultFlags(t *testing.T) {
	b := New("store", WithFailureThreshold(2))

	useFallback, _ := b.RecordFailure()
	assert.False(t, useFallback)
	useFallback, _ = b.RecordFailure()
	assert.True(t, useFallback)

	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
}

func TestResetClosesCircuit(t *testing.T) {
	b := New("store", WithFailureThreshold(1))
	b.RecordFailure()
	assert.Equal(t, "open", b.State().String())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestAllowProbesAfterCooldown(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := New("store",
		WithFailureThreshold(1),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return now }),
	)

	b.RecordFailure()
	assert.False(t, b.Allow())

	now = now.Add(9 * time.Second)
	assert.False(t, b.Allow())

	now = now.Add(time.Second)
	assert.True(t, b.Allow())

	// a failed probe restarts the cooldown
	b.RecordFailure()
	assert.False(t, b.Allow())

	now = now.Add(10 * time.Second)
	_, change := b.RecordSuccess()
	assert.True(t, change.Closed)
	assert.True(t, b.Allow())
}
