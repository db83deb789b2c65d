// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package calclog holds the process-wide log sink for calcsign, the same
// shape as the Logger field saferwall/pe threads through its Options, but
// kept behind package-level accessors instead of a back-pointer on Image or
// Key (per the "no context back-pointer" design note).
package calclog

import "fmt"

// Logger is the minimal leveled-logging surface every calcsign package
// depends on. A *zap.SugaredLogger satisfies it directly.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// nopLogger discards everything; it is the default until SetLogger is
// called.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

var (
	current Logger = nopLogger{}
	progName       = "calcsign"
)

// SetLogger installs the process-wide logger. This is the only observable
// mutation surface for the log sink, per the design note in spec.md that
// Image and Key must never carry a back-pointer to a logging context.
func SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	current = l
}

// SetProgName sets the name used to prefix user-visible diagnostic lines.
func SetProgName(name string) {
	progName = name
}

// L returns the process-wide logger.
func L() Logger { return current }

// Diagnostic formats a single diagnostic line prefixed with the program
// name and, when non-empty, the key file name and image file name -- the
// three prefixes named in spec.md's error-handling design.
func Diagnostic(keyFile, imageFile, format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	switch {
	case keyFile != "" && imageFile != "":
		return fmt.Sprintf("%s: %s: %s: %s", progName, keyFile, imageFile, msg)
	case imageFile != "":
		return fmt.Sprintf("%s: %s: %s", progName, imageFile, msg)
	case keyFile != "":
		return fmt.Sprintf("%s: %s: %s", progName, keyFile, msg)
	default:
		return fmt.Sprintf("%s: %s", progName, msg)
	}
}
