package reembed

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	var out bytes.Buffer
	tracker := NewProgressTracker(&out, 10, 5)

	tracker.Start()
	tracker.Update(5)
	assert.Contains(t, out.String(), "5/10")

	tracker.Update(7)
	// Below the report interval since last report, nothing new written.
	assert.NotContains(t, out.String(), "7/10")

	tracker.Finish()
	assert.Contains(t, out.String(), "10/10")
	assert.Contains(t, out.String(), "100.0%")
}

func TestProgressTracker_Increment(t *testing.T) {
	var out bytes.Buffer
	tracker := NewProgressTracker(&out, 4, 2)

	tracker.Start()
	tracker.Increment(1)
	assert.Empty(t, out.String())

	tracker.Increment(1)
	assert.Contains(t, out.String(), "2/4")

	// Caps at total.
	tracker.Increment(10)
	assert.Contains(t, out.String(), "4/4")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var out bytes.Buffer
	tracker := NewProgressTracker(&out, 10, 1)

	tracker.Update(5)
	tracker.Finish()

	assert.Empty(t, out.String())
	assert.Zero(t, tracker.Elapsed())
}
