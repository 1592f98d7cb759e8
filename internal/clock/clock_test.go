package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	c := NewFixed(at)

	assert.True(t, at.Equal(c.Now()))
	assert.True(t, at.Equal(c.Now()))
}

func TestRealClockAdvances(t *testing.T) {
	c := NewReal()
	before := time.Now()
	assert.False(t, c.Now().Before(before))
}
