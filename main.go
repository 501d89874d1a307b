package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

var (
	logger = NewLogger()
)

func main() {
	s, err := loadSettings(os.Args[1:], os.Stderr)
	if err != nil {
		code := settingsExitCode(err)
		if code != 0 {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(code)
	}
	settings = s

	if err := initLogger(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger.Info("trie %s start", settings.Version)

	err = NewRunner(settings, os.Stdout).Run()
	if err != nil {
		logger.Error("%s", err)
	}
	logger.Close()

	if err != nil {
		os.Exit(1)
	}
}

// settingsExitCode maps a loadSettings error to the process status. Asking
// for help is not a failure; the flag set has already printed the usage.
func settingsExitCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 2
}

func initLogger() error {
	if settings.Log.Console {
		if err := logger.SetLogger("console", nil); err != nil {
			return err
		}
	}

	if settings.Log.File != "" {
		config := map[string]interface{}{"file": settings.Log.File}
		if err := logger.SetLogger("file", config); err != nil {
			return err
		}
	}

	level := settings.Log.LogLevel()
	if settings.Debug {
		level = LevelDebug
	}
	logger.SetLevel(level)
	return nil
}
