package modules

import (
	"context"

	"go.uber.org/fx"

	"github.com/govexec/govexec/journal"
	"github.com/govexec/govexec/journal/fsjournal"
	"github.com/govexec/govexec/node/repo"
)

func OpenFilesystemJournal(lr repo.LockedRepo, lc fx.Lifecycle, disabled journal.DisabledEvents) (journal.Journal, error) {
	jrnl, err := fsjournal.OpenFSJournal(lr, disabled)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error { return jrnl.Close() },
	})

	return jrnl, err
}
