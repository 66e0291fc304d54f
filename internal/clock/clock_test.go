package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	c := NewFixed(start)
	assert.Equal(t, start, c.Now())

	got := c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), got)
	assert.Equal(t, got, c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestSystemUsesLocation(t *testing.T) {
	loc := time.FixedZone("desk", 3*60*60)
	now := NewSystem(loc).Now()
	assert.Equal(t, loc, now.Location())

	var zero System
	assert.Equal(t, time.UTC, zero.Now().Location())
}
