package builtins

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Armaan1620/myshell/internal/jobctl"
	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProber struct {
	alive map[int]bool
}

func (p *stubProber) Poll(pid int) (jobctl.State, bool) { return jobctl.Running, false }
func (p *stubProber) Alive(pid int) bool                { return p.alive[pid] }
func (p *stubProber) Continue(pid int) error            { return nil }

type testEnv struct {
	out, err bytes.Buffer
	jobs     *jobctl.Table
	fg       *jobctl.Foreground
	exitCode int
	exited   bool
}

func newTestEnv(alive ...int) *testEnv {
	color.NoColor = true
	prober := &stubProber{alive: map[int]bool{}}
	for _, pid := range alive {
		prober.alive[pid] = true
	}
	return &testEnv{
		jobs: jobctl.NewTable(jobctl.MaxJobs, prober),
		fg:   jobctl.NewForeground(),
	}
}

func (e *testEnv) Stdout() io.Writer              { return &e.out }
func (e *testEnv) Stderr() io.Writer              { return &e.err }
func (e *testEnv) Jobs() *jobctl.Table            { return e.jobs }
func (e *testEnv) Foreground() *jobctl.Foreground { return e.fg }
func (e *testEnv) Exit(code int)                  { e.exited, e.exitCode = true, code }

func run(env *testEnv, args ...string) int {
	b, ok := Lookup(args)
	if !ok {
		panic("no builtin " + args[0])
	}
	return b.Main(env, args)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"cd", "exit", "fg", "jobs", "pwd"}, Names())

	_, ok := Lookup(nil)
	assert.False(t, ok)
	_, ok = Lookup([]string{"ls"})
	assert.False(t, ok)
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(wd) })

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestCdAndPwd(t *testing.T) {
	dir := chdirTemp(t)
	env := newTestEnv()

	assert.Equal(t, 0, run(env, "cd", dir))
	assert.Equal(t, 0, run(env, "pwd"))
	assert.Equal(t, dir+"\n", env.out.String())
	assert.Empty(t, env.err.String())
}

func TestCdInvalidPath(t *testing.T) {
	chdirTemp(t)
	env := newTestEnv()

	assert.Equal(t, 1, run(env, "cd", "/definitely/not/here"))
	assert.Equal(t, "Invalid path.\n", env.err.String())
}

func TestCdHome(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("HOME", dir)
	env := newTestEnv()

	assert.Equal(t, 0, run(env, "cd"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, dir, wd)

	assert.Equal(t, 1, run(env, "cd", "a", "b"))
}

func TestExit(t *testing.T) {
	env := newTestEnv()
	run(env, "exit")
	assert.True(t, env.exited)
	assert.Equal(t, 0, env.exitCode)

	env = newTestEnv()
	run(env, "exit", "3")
	assert.Equal(t, 3, env.exitCode)

	env = newTestEnv()
	run(env, "exit", "nope")
	assert.True(t, env.exited)
	assert.Equal(t, 2, env.exitCode)
	assert.Contains(t, env.err.String(), "numeric argument required")
}

func TestFgInvalid(t *testing.T) {
	env := newTestEnv(500)
	env.jobs.Insert(400, "dead", jobctl.Running)

	cases := map[string][]string{
		"empty-slot":   {"fg", "37"},
		"dead-process": {"fg", "0"},
		"out-of-range": {"fg", "200"},
		"negative":     {"fg", "-1"},
		"not-a-number": {"fg", "x"},
	}
	for tn, args := range cases {
		t.Run(tn, func(t *testing.T) {
			env.err.Reset()
			assert.Equal(t, 1, run(env, args...))
			assert.Equal(t, "Invalid job number.\n", env.err.String())
		})
	}

	env.err.Reset()
	assert.Equal(t, 2, run(env, "fg"))
	assert.Contains(t, env.err.String(), "usage")
}

func TestJobsReport(t *testing.T) {
	env := newTestEnv(101, 103)
	env.jobs.Insert(101, "sleep 10 &", jobctl.Running)
	env.jobs.Insert(102, "true &", jobctl.Running)
	env.jobs.Insert(103, "vim notes", jobctl.Stopped)

	require.Equal(t, 0, run(env, "jobs"))

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithTestNameForDir(true),
	)
	g.Assert(t, "listing", env.out.Bytes())
}

func TestJobsPidsOnly(t *testing.T) {
	env := newTestEnv(101, 103)
	env.jobs.Insert(101, "a", jobctl.Running)
	env.jobs.Insert(102, "b", jobctl.Running)
	env.jobs.Insert(103, "c", jobctl.Running)

	require.Equal(t, 0, run(env, "jobs", "-p"))
	assert.Equal(t, "101\n103\n", env.out.String())
}

func TestJobsUsage(t *testing.T) {
	env := newTestEnv()
	assert.Equal(t, 2, run(env, "jobs", "-z"))
	assert.Contains(t, env.err.String(), "usage: jobs [-p]")
	assert.Empty(t, env.out.String())
}

func TestSettle(t *testing.T) {
	env := newTestEnv()

	// No statuses, e.g. nothing could be started.
	assert.Equal(t, 0, Settle(env, "x", nil))
	assert.Zero(t, env.jobs.Len())
}
