package executor

import "golang.org/x/sys/unix"

// Pipeline is the result of starting a two-stage pipe. A side whose program
// could not be executed has a zero pid and its error set.
type Pipeline struct {
	Left, Right       int
	LeftErr, RightErr error
}

// Pids returns the pids of the sides that started, left first.
func (p Pipeline) Pids() []int {
	var pids []int
	for _, pid := range []int{p.Left, p.Right} {
		if pid != 0 {
			pids = append(pids, pid)
		}
	}
	return pids
}

// RunPipeline connects left's stdout to right's stdin through one pipe. Both
// pipe ends are close-on-exec, so each child keeps only the end installed as
// its 0 or 1, and the parent closes both once the two forks are done.
//
// Both children share one process group, led by left (by right when left
// could not start). Left is not reaped before right starts, so the group
// still exists when right joins it.
//
// The returned error is always a *FatalError; exec failures are reported per
// side in the Pipeline.
func (s *Spawner) RunPipeline(left, right []string) (Pipeline, error) {
	r, w, err := pipe()
	if err != nil {
		return Pipeline{}, &FatalError{Op: "pipe", Err: err}
	}
	defer unix.Close(r)
	defer unix.Close(w)

	var p Pipeline

	p.Left, err = s.start(left, []uintptr{uintptr(s.Stdin), uintptr(w), uintptr(s.Stderr)}, s.group(0, true))
	if IsFatal(err) {
		return p, err
	}
	p.LeftErr = err

	p.Right, err = s.start(right, []uintptr{uintptr(r), uintptr(s.Stdout), uintptr(s.Stderr)}, s.group(p.Left, true))
	if IsFatal(err) {
		return p, err
	}
	p.RightErr = err

	return p, nil
}
