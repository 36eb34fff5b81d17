// Package app bootstraps one run of the program: config, theme, debug and
// error logging, the terminal surface, and the scheduler that drives them,
// following the teacher's pkg/app (config/log/gui wiring collapses onto a
// single App struct that cmd/sysdash constructs once and runs).
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/sysdash/sysdash/pkg/config"
	"github.com/sysdash/sysdash/pkg/errlog"
	"github.com/sysdash/sysdash/pkg/log"
	"github.com/sysdash/sysdash/pkg/sampler/net"
	"github.com/sysdash/sysdash/pkg/scheduler"
	"github.com/sysdash/sysdash/pkg/signals"
	"github.com/sysdash/sysdash/pkg/term"
	"github.com/sysdash/sysdash/pkg/theme"
	"github.com/sysdash/sysdash/pkg/utils"
)

// maxErrorLogLines is the line count the error log is trimmed down to on
// each startup (the original's "remove everything but the last 500 lines
// of error log if larger than 500 lines").
const maxErrorLogLines = 500

// App owns every long-lived collaborator for one run of the program.
type App struct {
	closers []io.Closer

	ConfigDir string
	Config    *config.Config
	Log       *logrus.Entry
	ErrLog    *errlog.Log
	Theme     theme.Theme
	Term      *term.Surface
	Signals   *signals.Handler
	Scheduler *scheduler.Scheduler
}

// NewApp loads configuration, opens the terminal, and wires a scheduler
// ready to Run. version and debug come from the command line.
func NewApp(version string, debug bool) (_ *App, err error) {
	app := &App{closers: []io.Closer{}}
	defer func() {
		if err != nil {
			utils.CloseMany(app.closers)
		}
	}()

	dir, err := config.Dir("sysdash")
	if err != nil {
		return nil, err
	}
	app.ConfigDir = dir

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	app.Config = &cfg

	app.Log = log.New(dir, debug, version)

	errLogFile, err := openErrorLog(dir, cfg.ErrorLogging, version)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, errLogFile)
	app.ErrLog = errlog.New(errLogFile, cfg.ErrorLogging)

	app.Theme, err = loadTheme(dir, cfg.ColorTheme)
	if err != nil {
		app.ErrLog.Error(err)
		app.Theme = theme.Default
		err = nil
	}

	surface, err := term.Open(os.Stdin, os.Stdout)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, surfaceCloser{surface})
	app.Term = surface
	surface.AltScreenOn()
	surface.HideCursor()

	app.Signals = signals.New()
	go func() {
		for range app.Signals.Resize {
			surface.NotifyResize()
		}
	}()

	netIface, ifaceErr := net.DefaultInterface()
	if ifaceErr != nil {
		app.ErrLog.Error(ifaceErr)
	}

	app.Scheduler = scheduler.New(
		surface, app.Signals, app.ErrLog, app.Config, app.Theme,
		runtime.NumCPU(), netIface,
		scheduler.WithSuspendHooks(surface.Suspend, surface.Resume),
		scheduler.WithConfigSave(func(c config.Config) error { return config.Save(dir, c) }),
	)

	return app, nil
}

// Run starts the frame loop.
func (app *App) Run() error {
	return app.Scheduler.Run()
}

// Close restores the terminal and releases every resource opened by
// NewApp, persisting the config one last time (spec §5's "writes happen
// only at clean exit").
func (app *App) Close() error {
	if app.Config != nil {
		if err := config.Save(app.ConfigDir, *app.Config); err != nil {
			if app.ErrLog != nil {
				app.ErrLog.Error(err)
			}
		}
	}
	app.Signals.Stop()

	var firstErr error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type surfaceCloser struct{ s *term.Surface }

func (c surfaceCloser) Close() error {
	c.s.ShowCursor()
	c.s.AltScreenOff()
	return c.s.Close()
}

// openErrorLog trims the on-disk error log to maxErrorLogLines, appends a
// start-of-instance banner (the original's "New instance of ... Pid: $$"),
// and returns it open for append.
func openErrorLog(dir string, enabled bool, version string) (*os.File, error) {
	if !enabled {
		return os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	}

	path := filepath.Join(dir, "error.log")
	if err := truncateToLastLines(path, maxErrorLogLines); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(f, "\nNew instance of sysdash version: %s Pid: %d\n", version, os.Getpid())
	return f, nil
}

func truncateToLastLines(path string, n int) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	lines := splitLinesKeepEmpty(data)
	if len(lines) <= n {
		return nil
	}
	trimmed := lines[len(lines)-n:]
	var out []byte
	for _, line := range trimmed {
		out = append(out, line...)
		out = append(out, '\n')
	}
	return os.WriteFile(path, out, 0o644)
}

func splitLinesKeepEmpty(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}

// loadTheme reads "<dir>/<colorTheme>" when colorTheme names something
// other than the built-in default, falling back to theme.Default on any
// error.
func loadTheme(dir, colorTheme string) (theme.Theme, error) {
	if colorTheme == "" || colorTheme == "Default" {
		return theme.Default, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, colorTheme))
	if err != nil {
		return theme.Default, err
	}
	th, err := theme.Parse(string(data))
	if err != nil {
		return theme.Default, err
	}
	return th, nil
}
