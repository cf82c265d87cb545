package composite

import "sync"

// ScheduleFunc posts fn to run on the host's next frame.
type ScheduleFunc func(fn func())

// Scheduler coalesces redraw requests so at most one frame is pending.
type Scheduler struct {
	mu       sync.Mutex
	pending  bool
	schedule ScheduleFunc
	draw     func()
	frames   int
}

// NewScheduler creates a scheduler that runs draw through schedule.
func NewScheduler(schedule ScheduleFunc, draw func()) *Scheduler {
	return &Scheduler{schedule: schedule, draw: draw}
}

// RequestRedraw asks for a frame. Requests made while a frame is pending
// are folded into it.
func (s *Scheduler) RequestRedraw() {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = true
	s.mu.Unlock()

	s.schedule(s.frame)
}

// VisibilityChanged requests a redraw when the surface becomes visible.
func (s *Scheduler) VisibilityChanged(visible bool) {
	if visible {
		s.RequestRedraw()
	}
}

func (s *Scheduler) frame() {
	s.mu.Lock()
	s.pending = false
	s.frames++
	s.mu.Unlock()

	if s.draw != nil {
		s.draw()
	}
}

// Pending reports whether a frame is scheduled but not yet run.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Frames returns the number of frames drawn.
func (s *Scheduler) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
