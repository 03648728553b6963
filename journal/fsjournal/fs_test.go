package fsjournal

import (
	"os"
	"testing"
	"time"

	"github.com/raulk/clock"
	"github.com/stretchr/testify/require"

	"github.com/govexec/govexec/build"
	"github.com/govexec/govexec/journal"
)

func newTestJournal(t *testing.T, keep int) *fsJournal {
	t.Helper()
	f := &fsJournal{
		EventTypeRegistry: journal.NewEventTypeRegistry(nil),
		dir:               t.TempDir(),
		sizeLimit:         1 << 30,
		keep:              keep,
	}
	t.Cleanup(func() {
		if f.fi != nil {
			_ = f.fi.Close()
		}
	})
	return f
}

func TestRollingRemovesOldFiles(t *testing.T) {
	mock := clock.NewMock()
	orig := build.Clock
	build.Clock = mock
	t.Cleanup(func() { build.Clock = orig })

	j := newTestJournal(t, 3)
	for i := 0; i <= j.keep; i++ {
		mock.Add(time.Second)
		files, err := os.ReadDir(j.dir)
		require.NoError(t, err)
		require.Lenf(t, files, i, "add one file for every roll before max keep")
		require.NoError(t, j.rollJournalFile())
	}

	// on the last iteration, one of the files should have been pruned,
	// so we should still have only the maximum kept files.
	mock.Add(time.Second)
	files, err := os.ReadDir(j.dir)
	require.NoError(t, err)
	require.Lenf(t, files, j.keep, "files are not being pruned from the journal directory")
}

func TestEventsLandInFile(t *testing.T) {
	j := newTestJournal(t, 2)
	require.NoError(t, j.rollJournalFile())

	et := j.RegisterEventType("gov", "queued")
	evt := &journal.Event{EventType: et, Timestamp: time.Now(), Data: map[string]string{"k": "v"}}
	require.NoError(t, j.putEvent(evt))

	b, err := os.ReadFile(j.fi.Name())
	require.NoError(t, err)
	require.Contains(t, string(b), `"System":"gov"`)
	require.Contains(t, string(b), `"Event":"queued"`)
}
