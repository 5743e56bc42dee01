// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logger holds the process-wide diagnostic logger for skillctl.
//
// Diagnostics go to stderr through toolhive-core/logging. They never mix with
// the request/response debug log, which the CLI flushes to stdout.
package logger

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/spf13/viper"

	"github.com/stacklok/toolhive-core/env"
	"github.com/stacklok/toolhive-core/logging"
)

// UnstructuredLogsEnvVar selects plain text output when true (the default).
const UnstructuredLogsEnvVar = "SKILLCTL_UNSTRUCTURED_LOGS"

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(logging.New())
}

// Debugf logs a formatted diagnostic that only shows with --debug.
func Debugf(format string, args ...any) {
	current.Load().Debug(fmt.Sprintf(format, args...))
}

// Debugw logs msg at debug level with key-value attributes.
func Debugw(msg string, keysAndValues ...any) {
	current.Load().Debug(msg, keysAndValues...)
}

// Warnf logs a formatted warning.
func Warnf(format string, args ...any) {
	current.Load().Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error.
func Errorf(format string, args ...any) {
	current.Load().Error(fmt.Sprintf(format, args...))
}

// Initialize rebuilds the logger from the process environment and the
// "debug" viper key. Commands call it once flags are parsed.
func Initialize() {
	InitializeWithEnv(&env.OSReader{})
}

// InitializeWithEnv is Initialize with an injectable environment.
func InitializeWithEnv(envReader env.Reader) {
	format := logging.FormatJSON
	if textOutput(envReader) {
		format = logging.FormatText
	}
	level := slog.LevelInfo
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	current.Store(logging.New(logging.WithFormat(format), logging.WithLevel(level)))
}

// textOutput reads UnstructuredLogsEnvVar. Unset or unparsable values keep
// the text format.
func textOutput(envReader env.Reader) bool {
	text, err := strconv.ParseBool(envReader.Getenv(UnstructuredLogsEnvVar))
	return err != nil || text
}
