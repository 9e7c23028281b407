package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

const sampleCheckpoint = `{
  "Journals": {
    "JournalDate": "2023-04-01T00:00:00+00:00",
    "JournalNumber": 3
  },
  "Contacts": {
    "UpdatedDateUTC": "2023-03-16T00:00:00+00:00"
  },
  "Currencies": {},
  "Reports": null
}`

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	cp, err := NewStore().Load(filepath.Join(t.TempDir(), "latest.json"))

	require.NoError(t, err)
	assert.Equal(t, 0, cp.Len())
}

func TestLoad_ParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCheckpoint), 0644))

	cp, err := NewStore().Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Journals", "Contacts", "Currencies", "Reports"}, cp.Endpoints())

	journals, ok := cp.Get("Journals")
	require.True(t, ok)
	assert.Equal(t, []string{"JournalDate", "JournalNumber"}, journals.Names())
	date, ok := journals.Time("JournalDate")
	require.True(t, ok)
	assert.True(t, date.Equal(time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)))
	number, ok := journals.Int("JournalNumber")
	require.True(t, ok)
	assert.Equal(t, int64(3), number)

	currencies, ok := cp.Get("Currencies")
	require.True(t, ok)
	require.NotNil(t, currencies)
	assert.Equal(t, 0, currencies.Len())

	reports, ok := cp.Get("Reports")
	assert.True(t, ok, "null is recorded, not absent")
	assert.Nil(t, reports)

	_, ok = cp.Get("Invoices")
	assert.False(t, ok)
}

func TestLoad_AcceptsTimestampVariants(t *testing.T) {
	cp, err := Decode([]byte(`{"A":{"UpdatedDateUTC":"2023-03-16T10:11:12.123456"},"B":{"UpdatedDateUTC":"2023-03-16T10:11:12+01:00"}}`))
	require.NoError(t, err)

	a, _ := cp.Get("A")
	ta, ok := a.Time("UpdatedDateUTC")
	require.True(t, ok)
	assert.Equal(t, 123456000, ta.Nanosecond())

	b, _ := cp.Get("B")
	tb, ok := b.Time("UpdatedDateUTC")
	require.True(t, ok)
	assert.True(t, tb.Equal(time.Date(2023, 3, 16, 9, 11, 12, 0, time.UTC)))
}

func TestLoad_CorruptIsFatal(t *testing.T) {
	tests := map[string]string{
		"truncated":     `{"Journals": {`,
		"not an object": `[1, 2]`,
		"bad cursor":    `{"Journals": 3}`,
		"bad timestamp": `{"Journals": {"JournalDate": "yesterday"}}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "latest.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			_, err := NewStore().Load(path)

			assert.ErrorIs(t, err, domain.ErrCheckpointCorrupt)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestSave_RoundTripsExactFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCheckpoint), 0644))
	store := NewStore()

	cp, err := store.Load(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(path, cp))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleCheckpoint, string(data))
}

func TestSave_CreatesParentsAndWritesUTC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Tenant 1", "latest.json")
	cursor := domain.NewCursor()
	cursor.SetTime("UpdatedDateUTC", time.Date(2023, 3, 16, 1, 0, 0, 0, time.FixedZone("BST", 3600)))
	cp := domain.NewCheckpoint()
	cp.Set("Contacts", cursor)

	require.NoError(t, NewStore().Save(path, cp))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"Contacts\": {\n    \"UpdatedDateUTC\": \"2023-03-16T00:00:00+00:00\"\n  }\n}", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(domain.NewCheckpoint())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
