// Package inbox imports .ics files dropped into a directory and keeps the
// imported events in step with the files.
package inbox

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/starford/daybook/internal/checksum"
	"github.com/starford/daybook/internal/icalx"
	"github.com/starford/daybook/internal/models"
)

// Callback kinds.
const (
	KindImported = "imported"
	KindRemoved  = "removed"
)

// EventCallback is called after a file's events were imported or removed.
type EventCallback func(kind string, path string)

// Store is the part of the event store the inbox writes to.
type Store interface {
	Import(ctx context.Context, inputs []models.EventInput) ([]models.Event, int)
	Delete(ctx context.Context, id string) bool
}

type tracked struct {
	checksum string
	ids      []string
}

// Inbox maps each calendar file to the events imported from it.
type Inbox struct {
	dir    *Dir
	store  Store
	loc    *time.Location
	logger *slog.Logger
	cb     EventCallback

	mu    sync.Mutex
	files map[string]tracked
}

// New creates an inbox over dir. Days of imported events are anchored in loc.
func New(dir *Dir, store Store, loc *time.Location, logger *slog.Logger, cb EventCallback) *Inbox {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{
		dir:    dir,
		store:  store,
		loc:    loc,
		logger: logger,
		cb:     cb,
		files:  make(map[string]tracked),
	}
}

// Sync brings the store up to date with the directory:
//   - new/changed files are (re)imported
//   - events of files no longer on disk are deleted
func (in *Inbox) Sync(ctx context.Context) error {
	files, err := in.dir.List()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}
		if err := in.Load(ctx, f.Path); err != nil {
			in.logger.Warn("inbox: import failed", slog.String("path", f.Path), slog.String("error", err.Error()))
		}
	}

	for _, p := range in.Paths() {
		if _, ok := disk[p]; !ok {
			in.Remove(ctx, p)
		}
	}
	return nil
}

// Load imports path, replacing the events previously imported from it.
// Unchanged content is skipped. When the file does not parse, the earlier
// events stay in place.
func (in *Inbox) Load(ctx context.Context, path string) error {
	data, err := in.dir.Read(path)
	if err != nil {
		return err
	}
	cs := checksum.Calendar(data)

	in.mu.Lock()
	defer in.mu.Unlock()
	prev, known := in.files[path]
	if known && prev.checksum == cs {
		return nil
	}

	inputs, skipped, err := icalx.Decode(bytes.NewReader(data), in.loc)
	if err != nil {
		return err
	}
	for _, id := range prev.ids {
		in.store.Delete(ctx, id)
	}
	created, rejected := in.store.Import(ctx, inputs)

	ids := make([]string, len(created))
	for i, ev := range created {
		ids[i] = ev.ID
	}
	in.files[path] = tracked{checksum: cs, ids: ids}

	in.logger.Info("inbox: imported",
		slog.String("path", path),
		slog.Int("events", len(ids)),
		slog.Int("skipped", skipped+rejected))
	if in.cb != nil {
		in.cb(KindImported, path)
	}
	return nil
}

// Remove deletes the events imported from path.
func (in *Inbox) Remove(ctx context.Context, path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	prev, ok := in.files[path]
	if !ok {
		return
	}
	for _, id := range prev.ids {
		in.store.Delete(ctx, id)
	}
	delete(in.files, path)

	in.logger.Info("inbox: removed", slog.String("path", path), slog.Int("events", len(prev.ids)))
	if in.cb != nil {
		in.cb(KindRemoved, path)
	}
}

// Events returns the ids of the events imported from path.
func (in *Inbox) Events(path string) []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return slices.Clone(in.files[path].ids)
}

// Paths returns the tracked files in sorted order.
func (in *Inbox) Paths() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]string, 0, len(in.files))
	for p := range in.files {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
