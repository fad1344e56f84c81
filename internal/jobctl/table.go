package jobctl

import (
	"errors"
	"fmt"
)

// MaxJobs is the default number of job slots.
const MaxJobs = 200

// ErrInvalidJob is returned for a slot that is out of range, empty, or whose
// process is gone.
var ErrInvalidJob = errors.New("invalid job number")

// Job is one occupied slot.
type Job struct {
	Slot  int
	Pid   int
	Cmd   string
	State State
}

// Table is a fixed-capacity ring of background jobs. Inserting past capacity
// silently overwrites the oldest slot. Slots are not cleared when their
// process exits; every query re-checks the process against the OS instead.
//
// Table is not safe for concurrent use.
type Table struct {
	slots  []Job
	cursor int
	prober Prober
}

// NewTable returns a table with the given capacity (MaxJobs if not
// positive). A nil prober means OSProber.
func NewTable(capacity int, prober Prober) *Table {
	if capacity <= 0 {
		capacity = MaxJobs
	}
	if prober == nil {
		prober = OSProber{}
	}
	t := &Table{
		slots:  make([]Job, capacity),
		prober: prober,
	}
	for i := range t.slots {
		t.slots[i].Slot = i
	}
	return t
}

// Capacity is the number of slots.
func (t *Table) Capacity() int {
	return len(t.slots)
}

// Len counts slots holding a pid, stale or not.
func (t *Table) Len() int {
	n := 0
	for _, j := range t.slots {
		if j.Pid != 0 {
			n++
		}
	}
	return n
}

// Insert stores pid at the cursor and advances it. Never fails. If pid already
// occupies another slot that slot is cleared, so a pid is listed once.
func (t *Table) Insert(pid int, cmd string, state State) int {
	for i := range t.slots {
		if t.slots[i].Pid == pid {
			t.clear(i)
		}
	}

	slot := t.cursor
	t.slots[slot] = Job{Slot: slot, Pid: pid, Cmd: cmd, State: state}
	t.cursor = (t.cursor + 1) % len(t.slots)
	return slot
}

// List polls every occupied slot and returns those whose process is still
// alive, in slot order. Finished children are reaped even though they are
// not reported.
func (t *Table) List() []Job {
	var live []Job
	for i := range t.slots {
		if t.refresh(i) {
			live = append(live, t.slots[i])
		}
	}
	return live
}

// Get returns the job in slot if it is in range and alive.
func (t *Table) Get(slot int) (Job, error) {
	if slot < 0 || slot >= len(t.slots) || !t.refresh(slot) {
		return Job{}, fmt.Errorf("%w: %d", ErrInvalidJob, slot)
	}
	return t.slots[slot], nil
}

// Resume moves the job in slot to the foreground: the job's group gets the
// terminal, the process is continued and fg blocks until it exits or stops
// again. The slot is cleared once the process has been continued.
func (t *Table) Resume(slot int, fg *Foreground) ([]Status, error) {
	job, err := t.Get(slot)
	if err != nil {
		return nil, err
	}

	return fg.Continue(job.Pid, func(pid int) error {
		if err := t.prober.Continue(pid); err != nil {
			return fmt.Errorf("continuing %d: %w", pid, err)
		}
		t.clear(slot)
		return nil
	})
}

// refresh polls slot i and reports whether it holds a live process.
func (t *Table) refresh(i int) bool {
	job := &t.slots[i]
	if job.Pid == 0 || job.State == Done {
		return false
	}

	if state, ok := t.prober.Poll(job.Pid); ok {
		job.State = state
	}
	// Once reaped the pid may be reused by an unrelated process.
	if job.State == Done {
		return false
	}
	return t.prober.Alive(job.Pid)
}

func (t *Table) clear(i int) {
	t.slots[i] = Job{Slot: i}
}
