package session

const eventBufferSize = 16

// Subscription provides event channels for a subscriber. Events of one
// kind are delivered in emission order; sends never block (events are
// dropped when a subscriber's buffer is full).
type Subscription struct {
	Played   <-chan PlayEvent
	Paused   <-chan PauseEvent
	Finished <-chan FinishEvent
	Process  <-chan ProcessEvent
	Ready    <-chan ReadyEvent
	Error    <-chan ErrorEvent
	Done     <-chan struct{}

	// Internal write channels
	playCh    chan PlayEvent
	pauseCh   chan PauseEvent
	finishCh  chan FinishEvent
	processCh chan ProcessEvent
	readyCh   chan ReadyEvent
	errorCh   chan ErrorEvent
	doneCh    chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		playCh:    make(chan PlayEvent, eventBufferSize),
		pauseCh:   make(chan PauseEvent, eventBufferSize),
		finishCh:  make(chan FinishEvent, eventBufferSize),
		processCh: make(chan ProcessEvent, eventBufferSize),
		readyCh:   make(chan ReadyEvent, eventBufferSize),
		errorCh:   make(chan ErrorEvent, eventBufferSize),
		doneCh:    make(chan struct{}),
	}
	s.Played = s.playCh
	s.Paused = s.pauseCh
	s.Finished = s.finishCh
	s.Process = s.processCh
	s.Ready = s.readyCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) sendPlay(e PlayEvent) {
	select {
	case s.playCh <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendPause(e PauseEvent) {
	select {
	case s.pauseCh <- e:
	default:
	}
}

func (s *Subscription) sendFinish() {
	select {
	case s.finishCh <- FinishEvent{}:
	default:
	}
}

func (s *Subscription) sendProcess(e ProcessEvent) {
	select {
	case s.processCh <- e:
	default:
	}
}

func (s *Subscription) sendReady(e ReadyEvent) {
	select {
	case s.readyCh <- e:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
