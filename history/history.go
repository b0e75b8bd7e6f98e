// Package history keeps playback positions: the flush pipeline of a session and the stores it writes to.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/reelmark-cli/reelmark/filesystem"
	"github.com/reelmark-cli/reelmark/log"
	"github.com/reelmark-cli/reelmark/where"
)

// ErrNoRecord is returned when a store holds nothing for the requested video.
var ErrNoRecord = errors.New("no saved position")

// Persister receives position writes. Implementations must tolerate replays
// of the same or an older write.
type Persister interface {
	Persist(ctx context.Context, f Flush) error
}

// Reader looks up the saved position of one video.
type Reader interface {
	Get(ctx context.Context, profileID, courseID, videoID string) (Entry, error)
}

// Store is a Persister that can also be browsed.
type Store interface {
	Persister
	Reader
	List(ctx context.Context) ([]Entry, error)
	Remove(ctx context.Context, e Entry) error
	Close() error
}

// Backends understood by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend at its default location.
func Open(backend string) (Store, error) {
	switch backend {
	case BackendFile:
		return NewLocal(where.History()), nil
	case BackendSQLite:
		return OpenSQLite(where.HistoryDB())
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

// Discard drops every write. It backs sessions with saving disabled.
var Discard Persister = discard{}

type discard struct{}

func (discard) Persist(context.Context, Flush) error { return nil }

// Local is a Store kept in a single JSON document through gache.
type Local struct {
	mu     sync.Mutex
	cacher *gache.Cache[map[string]*Entry]
	now    func() time.Time
}

// NewLocal returns a Local store backed by the file at path.
func NewLocal(path string) *Local {
	return &Local{
		cacher: gache.New[map[string]*Entry](
			&gache.Options{
				Path:       path,
				FileSystem: &filesystem.GacheFs{},
			},
		),
		now: time.Now,
	}
}

// load returns the complete collection of saved positions.
func (l *Local) load() (map[string]*Entry, error) {
	cached, expired, err := l.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Persist folds f into the saved entry for its video.
func (l *Local) Persist(ctx context.Context, f Flush) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	saved, err := l.load()
	if err != nil {
		log.Warnf("history: load %s/%s: %v", f.CourseID, f.VideoID, err)
		return err
	}

	key := encode(f.ProfileID, f.CourseID, f.VideoID)
	entry, ok := saved[key]
	if !ok {
		entry = &Entry{}
		saved[key] = entry
	}
	entry.apply(f, l.now())

	if err := l.cacher.Set(saved); err != nil {
		log.Warnf("history: save %s/%s: %v", f.CourseID, f.VideoID, err)
		return err
	}
	return nil
}

// Get returns the saved entry for a video, or ErrNoRecord.
func (l *Local) Get(_ context.Context, profileID, courseID, videoID string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	saved, err := l.load()
	if err != nil {
		return Entry{}, err
	}

	entry, ok := saved[encode(profileID, courseID, videoID)]
	if !ok {
		return Entry{}, ErrNoRecord
	}
	return *entry, nil
}

// List returns every saved entry, most recently updated first.
func (l *Local) List(_ context.Context) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	saved, err := l.load()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(saved))
	for _, e := range saved {
		entries = append(entries, *e)
	}
	sortEntries(entries)
	return entries, nil
}

// Remove permanently deletes a saved entry.
func (l *Local) Remove(_ context.Context, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	saved, err := l.load()
	if err != nil {
		return err
	}

	delete(saved, e.encode())
	return l.cacher.Set(saved)
}

func (l *Local) Close() error { return nil }

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
		}
		return entries[i].encode() < entries[j].encode()
	})
}
