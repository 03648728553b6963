package kit

import (
	logging "github.com/ipfs/go-log/v2"

	"github.com/govexec/govexec/lib/logs"
)

func QuietLogs() {
	logs.SetupLogLevels()

	_ = logging.SetLogLevel("gov", "ERROR") // set this to INFO to watch the governor work.
	_ = logging.SetLogLevel("rpc", "ERROR")
	_ = logging.SetLogLevel("builder", "ERROR")
}

func QuietAllLogsExcept(names ...string) {
	logs.SetupLogLevels()
	logging.SetAllLoggers(logging.LevelError)
	for _, name := range names {
		_ = logging.SetLogLevel(name, "INFO")
	}
}
