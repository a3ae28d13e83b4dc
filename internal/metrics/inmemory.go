package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered  uint64
	UsersLoggedIn    uint64
	BookmarksCreated uint64
	BookmarksUpdated uint64
	BookmarksDeleted uint64
	FavoritesToggled uint64
}

// InMemoryRecorder stores counters in memory, mainly for tests.
type InMemoryRecorder struct {
	usersRegistered  atomic.Uint64
	usersLoggedIn    atomic.Uint64
	bookmarksCreated atomic.Uint64
	bookmarksUpdated atomic.Uint64
	bookmarksDeleted atomic.Uint64
	favoritesToggled atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:  m.usersRegistered.Load(),
		UsersLoggedIn:    m.usersLoggedIn.Load(),
		BookmarksCreated: m.bookmarksCreated.Load(),
		BookmarksUpdated: m.bookmarksUpdated.Load(),
		BookmarksDeleted: m.bookmarksDeleted.Load(),
		FavoritesToggled: m.favoritesToggled.Load(),
	}
}

func (m *InMemoryRecorder) IncUserRegistered()  { m.usersRegistered.Add(1) }
func (m *InMemoryRecorder) IncUserLoggedIn()    { m.usersLoggedIn.Add(1) }
func (m *InMemoryRecorder) IncBookmarkCreated() { m.bookmarksCreated.Add(1) }
func (m *InMemoryRecorder) IncBookmarkUpdated() { m.bookmarksUpdated.Add(1) }
func (m *InMemoryRecorder) IncBookmarkDeleted() { m.bookmarksDeleted.Add(1) }
func (m *InMemoryRecorder) IncFavoriteToggled() { m.favoritesToggled.Add(1) }
