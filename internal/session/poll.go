package session

// Tick is the poll driver, invoked by the graph's processing node at a
// fixed cadence while the output graph renders. It detects crossing of
// the scheduled pause boundary and emits the per-tick process event.
//
// Ordering matters: the boundary check (and the pause it may trigger)
// runs before the process emission, so listeners observe a consistent
// paused state. Crossing the end of a sub-range only pauses; running
// past the end of the buffer additionally finishes.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.destroyed || s.paused {
		s.mu.Unlock()
		return
	}
	t := s.positionLocked()
	finished := false
	if t > s.scheduledPause {
		finished = t > s.durationLocked()
		s.pauseLocked()
	}
	s.mu.Unlock()

	if finished {
		s.emit(func(sub *Subscription) { sub.sendFinish() })
	}
	s.emit(func(sub *Subscription) { sub.sendProcess(ProcessEvent{Time: t}) })
}
