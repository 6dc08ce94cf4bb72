package session

// Status is the session state.
type Status int

const (
	// StatusRestoring is the initial state, before Restore finished.
	StatusRestoring Status = iota
	StatusUnauthenticated
	StatusAuthenticated
	// StatusRefreshingInFlight is held while a token refresh is outstanding.
	// A refresh started by Restore keeps StatusRestoring instead.
	StatusRefreshingInFlight
)

func (s Status) String() string {
	switch s {
	case StatusRestoring:
		return "restoring"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	case StatusRefreshingInFlight:
		return "refreshing"
	default:
		return "unknown"
	}
}
