package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_NilIsEmpty(t *testing.T) {
	var c *Cursor

	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Names())
	assert.Nil(t, c.Clone())
	_, ok := c.Value("UpdatedDateUTC")
	assert.False(t, ok)
}

func TestCursor_InsertionOrder(t *testing.T) {
	c := NewCursor()
	c.SetInt("JournalNumber", 10)
	c.SetTime("UpdatedDateUTC", time.Unix(0, 0))
	c.SetInt("JournalNumber", 12)

	assert.Equal(t, []string{"JournalNumber", "UpdatedDateUTC"}, c.Names())
	n, ok := c.Int("JournalNumber")
	require.True(t, ok)
	assert.Equal(t, int64(12), n)
}

func TestCursor_TypedAccessorsRejectOtherType(t *testing.T) {
	c := NewCursor()
	c.SetInt("JournalNumber", 1)
	c.SetTime("UpdatedDateUTC", time.Unix(0, 0))

	_, ok := c.Time("JournalNumber")
	assert.False(t, ok)
	_, ok = c.Int("UpdatedDateUTC")
	assert.False(t, ok)
}

func TestCursor_AdvanceOnlyWidens(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	c := NewCursor()
	c.AdvanceTime("UpdatedDateUTC", late)
	c.AdvanceTime("UpdatedDateUTC", early)
	c.AdvanceInt("JournalNumber", 7)
	c.AdvanceInt("JournalNumber", 3)

	got, _ := c.Time("UpdatedDateUTC")
	assert.Equal(t, late, got)
	n, _ := c.Int("JournalNumber")
	assert.Equal(t, int64(7), n)
}

func TestCursor_AdvanceFrom(t *testing.T) {
	c := NewCursor()
	c.SetInt("JournalNumber", 5)

	e := Entity(`{"JournalNumber":9,"CreatedDateUTC":"2024-03-01T10:00:00"}`)
	require.NoError(t, c.AdvanceFrom(e, []string{"JournalNumber", "CreatedDateUTC", "UpdatedDateUTC"}))

	n, _ := c.Int("JournalNumber")
	assert.Equal(t, int64(9), n)
	created, ok := c.Time("CreatedDateUTC")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), created)
	_, ok = c.Value("UpdatedDateUTC")
	assert.False(t, ok, "missing fields are left alone")
}

func TestCursor_AdvanceFromRejectsBadValues(t *testing.T) {
	c := NewCursor()

	err := c.AdvanceFrom(Entity(`{"JournalNumber":"nine"}`), []string{"JournalNumber"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = c.AdvanceFrom(Entity(`{"UpdatedDateUTC":"yesterday"}`), []string{"UpdatedDateUTC"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCursor_CloneIsIndependent(t *testing.T) {
	c := NewCursor()
	c.SetInt("JournalNumber", 1)

	clone := c.Clone()
	clone.SetInt("JournalNumber", 2)
	clone.SetInt("Other", 3)

	n, _ := c.Int("JournalNumber")
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestCheckpoint_GetSet(t *testing.T) {
	cp := NewCheckpoint()
	cur := NewCursor()
	cur.SetInt("JournalNumber", 4)

	cp.Set("Journals", cur)
	cp.Set("Invoices", nil)
	cp.Set("Journals", cur)

	assert.Equal(t, []string{"Journals", "Invoices"}, cp.Endpoints())
	assert.Equal(t, 2, cp.Len())

	got, ok := cp.Get("Invoices")
	assert.True(t, ok, "recorded without fields")
	assert.Nil(t, got)

	_, ok = cp.Get("Contacts")
	assert.False(t, ok)
}

func TestCheckpoint_ZeroValueUsable(t *testing.T) {
	var cp Checkpoint
	cp.Set("Accounts", NewCursor())

	assert.Equal(t, 1, cp.Len())
}
