package flicker

import "sync"

// Task runs one model on a scheduler. The zero value is not usable; create
// tasks with Run.
type Task struct {
	mu      sync.Mutex
	model   *Model
	sched   Scheduler
	onStep  func(Step)
	timer   Timer
	stopped bool
}

// Run starts a task for m. onStep, if non-nil, is called after every tick
// while the task's lock is held, so it must not call back into the task.
// Inactive models get a task with no timer.
func Run(m *Model, s Scheduler, onStep func(Step)) *Task {
	t := &Task{model: m, sched: s, onStep: onStep}
	if !m.Active() {
		return t
	}
	t.mu.Lock()
	t.timer = s.AfterFunc(m.Start(), t.tick)
	t.mu.Unlock()
	return t
}

func (t *Task) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	step := t.model.Tick(t.sched.Now())
	if t.onStep != nil {
		t.onStep(step)
	}
	t.timer = t.sched.AfterFunc(step.Next, t.tick)
}

// Stop cancels the pending tick. Once Stop returns no further steps are
// delivered. Stop is idempotent.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Offset returns the model's current offset.
func (t *Task) Offset() Offset {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.model.Offset()
}

// Stats returns the model's counters.
func (t *Task) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.model.Stats()
}

// Active reports whether the task has a pending tick.
func (t *Task) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && t.timer != nil
}
