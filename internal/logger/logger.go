// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})
	return l
}

// SetVerbose toggles debug output
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// Debug logs a debug message
func Debug(args ...interface{}) {
	log.Debug(args...)
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Info logs an informational message
func Info(args ...interface{}) {
	log.Info(args...)
}

// Infof logs a formatted informational message
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Action prints a progress action message
func Action(args ...interface{}) {
	log.Info(append([]interface{}{color.GreenString("==> ")}, args...)...)
}

// Actionf prints a formatted progress action message
func Actionf(format string, args ...interface{}) {
	log.Infof(color.GreenString("==> ")+format, args...)
}

// Error logs an error message
func Error(args ...interface{}) {
	log.Error(args...)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Fatal logs an error message and exits with a non-zero status
func Fatal(args ...interface{}) {
	log.Fatal(args...)
}

// Fatalf logs a formatted error message and exits with a non-zero status
func Fatalf(format string, args ...interface{}) {
	log.Fatalf(format, args...)
}
