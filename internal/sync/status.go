package sync

// State is the session lifecycle of the sync manager.
type State int

const (
	StateUnauthenticated State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Status is the advisory sync signal surfaced to the UI. None of these are
// fatal; the worst case is a stale schedule behind a degraded indicator.
type Status int

const (
	// StatusSyncing: remote reconciliation in progress.
	StatusSyncing Status = iota
	// StatusReady: local and remote agree as far as we know.
	StatusReady
	// StatusOffline: remote unreachable, running on the local snapshot.
	StatusOffline
	// StatusSavePending: a mutation is saved locally, remote write debouncing.
	StatusSavePending
	// StatusWriting: remote write in flight.
	StatusWriting
	// StatusSaved: remote write succeeded.
	StatusSaved
	// StatusSaveFailed: remote write failed; local state is intact.
	StatusSaveFailed
)

func (s Status) String() string {
	switch s {
	case StatusSyncing:
		return "syncing"
	case StatusReady:
		return "ready"
	case StatusOffline:
		return "offline"
	case StatusSavePending:
		return "save pending"
	case StatusWriting:
		return "writing"
	case StatusSaved:
		return "saved"
	case StatusSaveFailed:
		return "save failed"
	default:
		return "unknown"
	}
}
