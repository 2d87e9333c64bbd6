package orchestration

import "sync/atomic"

// CancelToken invalidates superseded in-flight speech sequences. The session
// driver owns one token and bumps it whenever the user answers early, jumps
// ahead, or a question times out; every asynchronous step captures a guard at
// its start and re-checks it after each suspension point.
//
// Bumping is the only cancellation mechanism: already-issued engine calls are
// not force-killed, they are just never acted upon again.
type CancelToken struct {
	value atomic.Uint64
}

func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Bump invalidates all guards captured before the call and returns the new
// live value.
func (t *CancelToken) Bump() uint64 {
	return t.value.Add(1)
}

// Guard captures the live token value for one asynchronous sequence.
func (t *CancelToken) Guard() Guard {
	return Guard{token: t, captured: t.value.Load()}
}

// Guard is a point-in-time capture of a CancelToken. A sequence holding a
// stale guard must stop advancing but must not report an error; abandonment
// is silent.
type Guard struct {
	token    *CancelToken
	captured uint64
}

// Stale reports whether the token advanced past the captured value. A zero
// guard is never stale so components without a configured token run
// unconditionally.
func (g Guard) Stale() bool {
	return g.token != nil && g.token.value.Load() != g.captured
}
