package registry

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"boosterdraft/internal/catalog"
	"boosterdraft/internal/draftengine"
	"boosterdraft/internal/draftmodel"
)

// Registry owns every live draft Engine for the process, persists each
// mutation to its snapshot file, and keeps the SQLite index in sync. It
// satisfies wshub.EngineStore.
type Registry struct {
	dataDir string
	index   *index

	mu      sync.RWMutex
	engines map[draftmodel.DraftID]*draftengine.Engine
}

// Open restores every snapshot under dataDir into a live Engine and
// (re)builds the SQLite index from what was actually loaded, so the
// index can never claim a draft the snapshot directory does not have
// (spec §4.8: the index is an advisory cache, rebuilt, never authoritative).
// A snapshot file that fails to decode (unknown version, corruption) is
// logged and skipped rather than aborting startup.
func Open(dataDir string) (*Registry, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	ix, err := openIndex(filepath.Join(dataDir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	r := &Registry{dataDir: dataDir, index: ix, engines: make(map[draftmodel.DraftID]*draftengine.Engine)}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var summaries []Summary
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".snapshot") {
			continue
		}
		path := filepath.Join(dataDir, e.Name())
		eng, err := readSnapshot(path)
		if err != nil {
			log.Printf("registry: skipping unreadable snapshot %s: %v", path, err)
			continue
		}
		r.engines[eng.Draft().ID] = eng
		summaries = append(summaries, summarize(eng))
	}

	if err := ix.rebuild(summaries); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}
	return r, nil
}

// Close releases the index's database handle. Live engines have nothing
// to close; their state already lives in snapshot files.
func (r *Registry) Close() error {
	return r.index.close()
}

// Create allocates a new draft Engine in PhaseLobby and persists its
// initial snapshot.
func (r *Registry) Create(spec draftmodel.PackSpec, cat *catalog.Catalog, now time.Time) (*draftengine.Engine, error) {
	eng := draftengine.New(draftmodel.NewDraftID(), spec, cat, now)

	r.mu.Lock()
	r.engines[eng.Draft().ID] = eng
	r.mu.Unlock()

	if err := r.Persist(eng.Draft().ID); err != nil {
		return nil, fmt.Errorf("persist new draft: %w", err)
	}
	return eng, nil
}

// Engine returns the live Engine for a draft, satisfying wshub.EngineStore.
func (r *Registry) Engine(id draftmodel.DraftID) (*draftengine.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	eng, ok := r.engines[id]
	return eng, ok
}

// Persist durably snapshots a draft's current state and updates its
// index row, satisfying wshub.EngineStore. Called after every mutating
// Engine call before the resulting events are delivered to clients (spec
// §5: "the Engine does not acknowledge the mutation to the client until
// the snapshot is durable").
func (r *Registry) Persist(id draftmodel.DraftID) error {
	eng, ok := r.Engine(id)
	if !ok {
		return fmt.Errorf("persist: unknown draft %s", id)
	}
	if err := writeSnapshot(r.dataDir, eng); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := r.index.upsert(summarize(eng)); err != nil {
		return fmt.Errorf("update index: %w", err)
	}
	return nil
}

// List returns every draft summary known to the index, most recently
// updated first.
func (r *Registry) List() ([]Summary, error) {
	return r.index.list()
}

// Get returns one draft's summary, reading the live Engine directly
// rather than the index (always current, unlike the cache).
func (r *Registry) Get(id draftmodel.DraftID) (Summary, bool) {
	eng, ok := r.Engine(id)
	if !ok {
		return Summary{}, false
	}
	return summarize(eng), true
}

func summarize(eng *draftengine.Engine) Summary {
	d := eng.Draft()
	maxSeats := d.Config.MaxSeats
	if maxSeats <= 0 {
		maxSeats = draftmodel.DefaultMaxSeats
	}
	return Summary{
		ID: d.ID, Phase: d.Phase, SeatCount: len(d.Seats), MaxSeats: maxSeats,
		PacksRemaining: d.PacksRemaining, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

// ActiveCount returns how many drafts have not reached a terminal phase,
// for the /healthz liveness response.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, eng := range r.engines {
		switch eng.Phase() {
		case draftmodel.PhaseFinished, draftmodel.PhaseTerminated:
		default:
			n++
		}
	}
	return n
}

// Reload re-reads one snapshot file from disk and replaces its live
// Engine and index row, for the Content Watcher (SPEC_FULL.md §4.9):
// an operator editing data files underneath the running server should
// see the Engine and Draft Index reconverge on what is actually on
// disk, the same reconciliation Open performs at startup. It returns
// the affected draft's ID so the caller can broadcast Refresh to it.
func (r *Registry) Reload(path string) (draftmodel.DraftID, error) {
	eng, err := readSnapshot(path)
	if err != nil {
		return "", fmt.Errorf("reload snapshot %s: %w", path, err)
	}

	id := eng.Draft().ID
	r.mu.Lock()
	r.engines[id] = eng
	r.mu.Unlock()

	if err := r.index.upsert(summarize(eng)); err != nil {
		return id, fmt.Errorf("update index: %w", err)
	}
	return id, nil
}
