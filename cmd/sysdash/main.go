package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/go-errors/errors"
	"github.com/integrii/flaggy"
	"github.com/samber/lo"

	"github.com/sysdash/sysdash/pkg/app"
	"github.com/sysdash/sysdash/pkg/config"
	"github.com/sysdash/sysdash/pkg/utils"
)

const defaultVersion = "unversioned"

var (
	commit  string
	version = defaultVersion
	date    string

	configFlag    = false
	debuggingFlag = false
)

func main() {
	updateBuildInfo()

	info := fmt.Sprintf("%s\nDate: %s\nCommit: %s\nOS: %s\nArch: %s",
		version, date, commit, runtime.GOOS, runtime.GOARCH)

	flaggy.SetName("sysdash")
	flaggy.SetDescription("A terminal resource dashboard for CPU, memory and network")
	flaggy.DefaultParser.AdditionalHelpPrepend = "https://github.com/sysdash/sysdash"

	flaggy.Bool(&configFlag, "c", "config", "Print the current default config")
	flaggy.Bool(&debuggingFlag, "d", "debug", "Enable the development debug log")
	flaggy.SetVersion(info)

	flaggy.Parse()

	if configFlag {
		fmt.Print(config.Render(config.Defaults()))
		os.Exit(0)
	}

	a, err := app.NewApp(version, debuggingFlag)
	if err != nil {
		log.Fatal(err.Error())
	}

	runErr := a.Run()
	closeErr := a.Close()
	if runErr == nil {
		runErr = closeErr
	}

	if runErr != nil {
		newErr := errors.Wrap(runErr, 0)
		stackTrace := newErr.ErrorStack()
		a.Log.Error(stackTrace)
		log.Fatalf("sysdash encountered an error\n\n%s", stackTrace)
	}
}

func updateBuildInfo() {
	if version != defaultVersion {
		return
	}
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if revision, ok := lo.Find(buildInfo.Settings, func(s debug.BuildSetting) bool {
		return s.Key == "vcs.revision"
	}); ok {
		commit = revision.Value
		version = utils.SafeTruncate(revision.Value, 7)
	}
	if t, ok := lo.Find(buildInfo.Settings, func(s debug.BuildSetting) bool {
		return s.Key == "vcs.time"
	}); ok {
		date = t.Value
	}
}
