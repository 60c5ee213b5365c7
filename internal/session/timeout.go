package session

import "time"

// Timeout states. The client shows an advisory countdown; the server
// computes the real state from the stored LastActive on every check.
type State int

const (
	Active State = iota
	Warned
	Expired
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Warned:
		return "warned"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// Timeout fixes the two inactivity windows: Active -> Warned after
// WarnAfter, Warned -> Expired after a further grace period ending at
// ExpireAfter. Both are measured from the shared LastActive, so activity
// in any tab resets the clock for all of them.
type Timeout struct {
	WarnAfter   time.Duration
	ExpireAfter time.Duration
}

// DefaultTimeout matches the service's observed behaviour: warn at 15
// minutes of inactivity, expire 5 minutes later.
var DefaultTimeout = Timeout{
	WarnAfter:   15 * time.Minute,
	ExpireAfter: 20 * time.Minute,
}

// StateOf computes the session's timeout state at the given instant.
func (t Timeout) StateOf(rec *Record, now time.Time) State {
	idle := now.Sub(rec.LastActive)
	switch {
	case idle >= t.ExpireAfter:
		return Expired
	case idle >= t.WarnAfter:
		return Warned
	default:
		return Active
	}
}

// Remaining returns how long until expiry at the given instant, floored
// at zero.
func (t Timeout) Remaining(rec *Record, now time.Time) time.Duration {
	left := t.ExpireAfter - now.Sub(rec.LastActive)
	if left < 0 {
		return 0
	}
	return left
}
