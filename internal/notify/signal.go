package notify

// Signal wakes the dispatcher after a commit. Wakes coalesce while the
// dispatcher is busy.
type Signal struct {
	ch chan struct{}
}

// NewSignal constructs Signal.
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Wake never blocks.
func (s *Signal) Wake() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// C is received from by the dispatcher.
func (s *Signal) C() <-chan struct{} {
	return s.ch
}
