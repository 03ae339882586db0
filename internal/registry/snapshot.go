// Package registry owns every live Engine, persists each draft to a
// snapshot file on every mutation, restores them at startup, and keeps a
// SQLite-backed secondary index for listing drafts without scanning the
// snapshot directory (spec §4.8).
package registry

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"boosterdraft/internal/catalog"
	"boosterdraft/internal/draftengine"
	"boosterdraft/internal/draftmodel"
)

// snapshotVersion guards the binary format. Bump it whenever the encoded
// shape changes; Restore skips (rather than crashes on) a file stamped
// with a version it does not recognize, per spec §6.
const snapshotVersion = 1

// snapshot is the versioned, gob-encodable representation of one draft's
// full state, sufficient to reconstruct its Engine exactly.
type snapshot struct {
	Version int

	ID     draftmodel.DraftID
	Config draftmodel.PackSpec
	Phase  draftmodel.Phase
	Round  int
	PacksRemaining int

	CardNames []string // catalog card names, in construction order
	Rarities  []catalog.Rarity
	ImageURLs []string
	Sets      []string
	Texts     []string

	Rounds [][]draftmodel.Pack
	Seats  []snapshotSeat

	Seed uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}

type snapshotSeat struct {
	ID            draftmodel.SeatID
	Index         int
	Name          string
	Ready         bool
	Pool          []catalog.Card
	Queue         []draftmodel.Pack
	Current       draftmodel.Pack
	Status        draftmodel.ConnectionStatus
	LastHeartbeat time.Time
	JoinedAt      time.Time
}

func toSnapshot(eng *draftengine.Engine) snapshot {
	d := eng.Draft()
	cat := d.Catalog

	s := snapshot{
		Version:        snapshotVersion,
		ID:             d.ID,
		Config:         d.Config,
		Phase:          d.Phase,
		Round:          d.Round,
		PacksRemaining: d.PacksRemaining,
		Rounds:         d.Rounds,
		Seed:           eng.Seed(),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}

	if cat != nil {
		all := cat.All()
		s.CardNames = make([]string, len(all))
		s.Rarities = make([]catalog.Rarity, len(all))
		s.ImageURLs = make([]string, len(all))
		s.Sets = make([]string, len(all))
		s.Texts = make([]string, len(all))
		for i, c := range all {
			s.CardNames[i] = c.Name
			s.Rarities[i] = c.Rarity
			s.ImageURLs[i] = c.ImageURL
			s.Sets[i] = c.Set
			s.Texts[i] = c.Text
		}
	}

	s.Seats = make([]snapshotSeat, len(d.Seats))
	for i, seat := range d.Seats {
		s.Seats[i] = snapshotSeat{
			ID: seat.ID, Index: seat.Index, Name: seat.Name, Ready: seat.Ready,
			Pool: seat.Pool, Queue: seat.Queue, Current: seat.Current,
			Status: seat.Status, LastHeartbeat: seat.LastHeartbeat, JoinedAt: seat.JoinedAt,
		}
	}
	return s
}

// rebuildCatalog reconstructs the Catalog from the flattened per-card
// fields saved in the snapshot, in their original order so card IDs are
// stable across a restore.
func (s snapshot) rebuildCatalog() (*catalog.Catalog, error) {
	names := make([]string, len(s.CardNames))
	db := make(map[string]catalog.Card, len(s.CardNames))
	for i, name := range s.CardNames {
		names[i] = name
		db[name] = catalog.Card{
			Name: name, Rarity: s.Rarities[i], ImageURL: s.ImageURLs[i],
			Set: s.Sets[i], Text: s.Texts[i],
		}
	}
	return catalog.Build(names, db)
}

func (s snapshot) toEngine() (*draftengine.Engine, error) {
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is not supported (want %d)", s.Version, snapshotVersion)
	}
	cat, err := s.rebuildCatalog()
	if err != nil {
		return nil, fmt.Errorf("rebuild catalog: %w", err)
	}

	seats := make([]*draftmodel.Seat, len(s.Seats))
	for i, ss := range s.Seats {
		seats[i] = &draftmodel.Seat{
			ID: ss.ID, Index: ss.Index, Name: ss.Name, Ready: ss.Ready,
			Pool: ss.Pool, Queue: ss.Queue, Current: ss.Current,
			Status: ss.Status, LastHeartbeat: ss.LastHeartbeat, JoinedAt: ss.JoinedAt,
		}
	}

	draft := &draftmodel.Draft{
		ID: s.ID, Config: s.Config, Catalog: cat, Seats: seats, Phase: s.Phase,
		Round: s.Round, PacksRemaining: s.PacksRemaining, Rounds: s.Rounds,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
	return draftengine.Restore(draft, s.Seed), nil
}

// snapshotPath returns the one file a draft's state lives in.
func snapshotPath(dataDir string, id draftmodel.DraftID) string {
	return filepath.Join(dataDir, string(id)+".snapshot")
}

// writeSnapshot gob-encodes eng's state and atomically replaces its
// snapshot file: encode to a temp file in the same directory (no fsync is
// done), then rename over the final path so a reader never observes a
// partially written file.
func writeSnapshot(dataDir string, eng *draftengine.Engine) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	s := toSnapshot(eng)
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	final := snapshotPath(dataDir, s.ID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	return nil
}

// readSnapshot decodes one draft's snapshot file into a restored Engine.
func readSnapshot(path string) (*draftengine.Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s.toEngine()
}
