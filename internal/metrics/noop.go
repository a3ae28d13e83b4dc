package metrics

// NoopRecorder discards all metrics.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (*NoopRecorder) IncUserRegistered()  {}
func (*NoopRecorder) IncUserLoggedIn()    {}
func (*NoopRecorder) IncBookmarkCreated() {}
func (*NoopRecorder) IncBookmarkUpdated() {}
func (*NoopRecorder) IncBookmarkDeleted() {}
func (*NoopRecorder) IncFavoriteToggled() {}
