package tty

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

func TestOpenRejectsFiles(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "plain"))
	require.NoError(t, err)
	defer f.Close()

	_, err = Open(int(f.Fd()))
	assert.ErrorIs(t, err, ErrNotTerminal)
}

func TestOpenDuplicates(t *testing.T) {
	ptmx, pts, err := pty.Open()
	if err != nil {
		t.Skipf("no pty: %v", err)
	}
	defer ptmx.Close()
	defer pts.Close()

	terminal, err := Open(int(pts.Fd()))
	require.NoError(t, err)
	defer terminal.Close()

	assert.NotEqual(t, int(pts.Fd()), terminal.Fd())
	flags, err := unix.FcntlInt(uintptr(terminal.Fd()), unix.F_GETFD, 0)
	require.NoError(t, err)
	assert.NotZero(t, flags&unix.FD_CLOEXEC)

	// The duplicate outlives the original descriptor.
	require.NoError(t, pts.Close())
	assert.True(t, term.IsTerminal(terminal.Fd()))
}
