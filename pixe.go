package pixe

import (
	"strings"

	"github.com/gamedevlabs/pixe/internal/logging"
)

// SetLogLevel sets the log level to one of
// debug, info, warning, error or none.
func SetLogLevel(level string) {
	var lvl logging.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = logging.LevelDebug
	case "info":
		lvl = logging.LevelInfo
	case "warning":
		lvl = logging.LevelWarning
	case "error":
		lvl = logging.LevelError
	default:
		lvl = logging.LevelNone
	}
	logging.SetLevel(lvl)
}
