package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

func TestRunStore_SaveAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := domain.ExportRun{ID: "r1", TenantID: "t1", Endpoint: "Journals", Status: domain.RunSucceeded}
	require.NoError(t, store.Save(ctx, run))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Journals", got.Endpoint)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, tenant := range []string{"t1", "t2", "t1"} {
		require.NoError(t, store.Save(ctx, domain.ExportRun{
			ID:         string(rune('a' + i)),
			TenantID:   tenant,
			TenantName: "Tenant " + tenant,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	all, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)

	byName, err := store.List(ctx, "Tenant t1", 1)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "c", byName[0].ID)
}

func TestRunStore_LastSuccess(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.ExportRun{ID: "1", TenantID: "t1", Endpoint: "Journals", Status: domain.RunSucceeded, StartedAt: base}))
	require.NoError(t, store.Save(ctx, domain.ExportRun{ID: "2", TenantID: "t1", Endpoint: "Journals", Status: domain.RunFailed, StartedAt: base.Add(time.Hour)}))

	got, err := store.LastSuccess(ctx, "t1", "Journals")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	_, err = store.LastSuccess(ctx, "t1", "Contacts")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckpointStore_RoundTripIsCopied(t *testing.T) {
	store := NewCheckpointStore()

	empty, err := store.Load("t/latest.json")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	cursor := domain.NewCursor()
	cursor.SetInt("JournalNumber", 3)
	cp := domain.NewCheckpoint()
	cp.Set("Journals", cursor)
	cp.Set("Currencies", nil)
	require.NoError(t, store.Save("t/latest.json", cp))

	cursor.SetInt("JournalNumber", 99)

	loaded, err := store.Load("t/latest.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"Journals", "Currencies"}, loaded.Endpoints())
	got, _ := loaded.Get("Journals")
	n, _ := got.Int("JournalNumber")
	assert.Equal(t, int64(3), n)
	currencies, ok := loaded.Get("Currencies")
	assert.True(t, ok)
	assert.Nil(t, currencies)
	assert.Equal(t, 1, store.Saves())
}
