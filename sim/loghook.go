package sim

import (
	"io"
	"log"
)

// LogHookBase gives a hook a logger of its own, separate from the standard
// logger.
type LogHookBase struct {
	*log.Logger
}

// NewLogHookBase creates a LogHookBase that writes to w with the given line
// prefix.
func NewLogHookBase(w io.Writer, prefix string) LogHookBase {
	return LogHookBase{Logger: log.New(w, prefix, 0)}
}
