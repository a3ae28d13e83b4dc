// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder receives counter increments from the service layer.
// Implementations must be safe for concurrent use.
type Recorder interface {
	IncUserRegistered()
	IncUserLoggedIn()
	IncBookmarkCreated()
	IncBookmarkUpdated()
	IncBookmarkDeleted()
	IncFavoriteToggled()
}
