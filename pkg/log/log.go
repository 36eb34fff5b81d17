// Package log builds the structured debug logger, following the teacher's
// pkg/log: a JSON-formatted logrus.Entry written to a file inside the
// config directory when debugging is enabled, discarded otherwise.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// New returns a logger carrying build metadata as structured fields.
func New(configDir string, debug bool, version string) *logrus.Entry {
	var logger *logrus.Logger
	if debug || os.Getenv("DEBUG") == "TRUE" {
		logger = newDevelopmentLogger(configDir)
	} else {
		logger = newProductionLogger()
	}
	logger.Formatter = &logrus.JSONFormatter{}

	return logger.WithFields(logrus.Fields{
		"debug":   debug,
		"version": version,
	})
}

func getLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.DebugLevel
	}
	return level
}

func newDevelopmentLogger(configDir string) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(getLogLevel())
	file, err := os.OpenFile(filepath.Join(configDir, "development.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		fmt.Println("unable to log to file")
		os.Exit(1)
	}
	logger.SetOutput(file)
	return logger
}

func newProductionLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}
