package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boosterdraft/internal/catalog"
	"boosterdraft/internal/draftmodel"
)

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("not a valid gob stream"), 0o644)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	db := map[string]catalog.Card{
		"A": {Name: "A", Rarity: catalog.Common, ImageURL: "http://img/a", Set: "TST", Text: "a"},
		"B": {Name: "B", Rarity: catalog.Common, ImageURL: "http://img/b", Set: "TST", Text: "b"},
	}
	cat, err := catalog.Build([]string{"A", "B"}, db)
	require.NoError(t, err)
	return cat
}

func TestCreatePersistAndReopenRestoresDraft(t *testing.T) {
	dir := t.TempDir()
	reg, err := Open(dir)
	require.NoError(t, err)

	spec := draftmodel.PackSpec{PacksPerSeat: 1, CardsPerPack: 1, UniqueCards: true}
	eng, err := reg.Create(spec, testCatalog(t), time.Unix(0, 0))
	require.NoError(t, err)
	id := eng.Draft().ID

	_, _, err = eng.Join(time.Unix(0, 0))
	require.NoError(t, err)
	require.NoError(t, reg.Persist(id))
	require.NoError(t, reg.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	restored, ok := reopened.Engine(id)
	require.True(t, ok, "draft %s not restored", id)
	assert.Len(t, restored.Draft().Seats, 1)

	summaries, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, id, summaries[0].ID)

	got, ok := reopened.Get(id)
	require.True(t, ok)
	assert.Equal(t, 1, got.SeatCount)
}

// A corrupt or unreadable snapshot file is skipped at startup rather than
// aborting the whole restore.
func TestOpenSkipsUnreadableSnapshot(t *testing.T) {
	dir := t.TempDir()
	reg, err := Open(dir)
	require.NoError(t, err)

	spec := draftmodel.PackSpec{PacksPerSeat: 1, CardsPerPack: 1, UniqueCards: true}
	_, err = reg.Create(spec, testCatalog(t), time.Unix(0, 0))
	require.NoError(t, err)
	require.NoError(t, reg.Close())

	badPath := filepath.Join(dir, "garbage.snapshot")
	require.NoError(t, writeGarbage(badPath))

	reopened, err := Open(dir)
	require.NoError(t, err, "reopen with garbage present")
	defer reopened.Close()

	summaries, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, summaries, 1, "garbage file should be skipped")
}
