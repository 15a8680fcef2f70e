package ui

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/ui/internal/logging"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// live holds every open Context so SetLogger can reach their components.
var (
	liveMu sync.Mutex
	live   = make(map[*Context]struct{})
)

func init() {
	loggerPtr.Store(logging.Nop())
}

// SetLogger configures the logger for ui and every open Context that was
// not given its own logger with WithLogger. By default ui produces no log
// output. Pass nil to restore silence.
//
// Log levels used by ui:
//   - [slog.LevelDebug]: per-frame diagnostics (phase timings, buffer growth)
//   - [slog.LevelInfo]: lifecycle events (backend created, config reloaded)
//   - [slog.LevelWarn]: dropped frames and recoverable failures
//
// Example:
//
//	ui.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	l = logging.OrNop(l)
	loggerPtr.Store(l)

	liveMu.Lock()
	ctxs := make([]*Context, 0, len(live))
	for c := range live {
		ctxs = append(ctxs, c)
	}
	liveMu.Unlock()
	for _, c := range ctxs {
		if !c.ownLogger {
			c.propagateLogger(l)
		}
	}
}

// Logger returns the current package logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by components that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

func register(c *Context) {
	liveMu.Lock()
	live[c] = struct{}{}
	liveMu.Unlock()
}

func unregister(c *Context) {
	liveMu.Lock()
	delete(live, c)
	liveMu.Unlock()
}
