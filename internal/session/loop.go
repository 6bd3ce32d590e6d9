package session

// UpdateSelection sets the loop region from fractional positions over
// the buffer duration and enables looping. Returns false when the
// loop-selection feature is disabled or no buffer is loaded. The region
// is pushed to the graph immediately so a live source picks it up.
func (s *Session) UpdateSelection(startFrac, endFrac float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.loopSelection || s.buf == nil {
		return false
	}
	dur := s.durationLocked()
	start := dur * startFrac
	end := dur * endFrac
	if end < start {
		// keep loopStart <= loopEnd
		start, end = end, start
	}
	s.loopEnabled = true
	s.loopStart = start
	s.loopEnd = end
	s.graph.SetLoop(true, start, end)
	return true
}

// ClearSelection disables looping and zeroes the region. Returns false
// when the loop-selection feature is disabled.
func (s *Session) ClearSelection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.loopSelection {
		return false
	}
	s.loopEnabled = false
	s.loopStart = 0
	s.loopEnd = 0
	s.loopedAtStart = false
	s.lastLoop = 0
	s.graph.SetLoop(false, 0, 0)
	return true
}

// setupLoopLocked latches the loop configuration for a new play
// segment. A region is only honored when it was enabled and the
// segment starts at or before the region end; otherwise the graph
// plays straight through.
func (s *Session) setupLoopLocked() {
	s.lastLoop = 0
	s.loopedAtStart = s.loopEnabled && s.lastStart <= s.loopEnd
	if s.loopedAtStart {
		s.graph.SetLoop(true, s.loopStart, s.loopEnd)
	} else {
		s.graph.SetLoop(false, 0, 0)
	}
}

// NotifyLoopWrap records the hardware timestamp of a loop wrap so the
// position computation rebases onto the region start. Wraps reported
// while the segment's loop was not latched are ignored.
func (s *Session) NotifyLoopWrap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.loopedAtStart {
		return
	}
	s.lastLoop = s.clock.Now()
}

func (s *Session) loopActiveLocked() bool {
	return s.loopSelection && s.loopEnabled && s.lastLoop != 0 && s.loopedAtStart
}
