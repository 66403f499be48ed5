package debounce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnlyLatestTicketCommits(t *testing.T) {
	d := New[string](50 * time.Millisecond)
	first := d.Schedule("so")
	second := d.Schedule("sol")
	third := d.Schedule("solar")

	_, ok := d.Commit(first)
	assert.False(t, ok)
	_, ok = d.Commit(second)
	assert.False(t, ok)
	value, ok := d.Commit(third)
	require.True(t, ok)
	assert.Equal(t, "solar", value)
	assert.False(t, d.Pending())
}

func TestTicketCommitsOnce(t *testing.T) {
	d := New[int](0)
	ticket := d.Schedule(7)
	_, ok := d.Commit(ticket)
	require.True(t, ok)
	_, ok = d.Commit(ticket)
	assert.False(t, ok)
}

func TestCancelInvalidatesPendingTicket(t *testing.T) {
	d := New[int](0)
	ticket := d.Schedule(1)
	d.Cancel()
	_, ok := d.Commit(ticket)
	assert.False(t, ok)
	assert.False(t, d.Pending())
}

func TestNegativeWindowClamped(t *testing.T) {
	assert.Equal(t, time.Duration(0), New[int](-time.Second).Window())
}
