package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Dependencies holds injectable dependencies for testability.
type Dependencies struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Signals func() (<-chan os.Signal, func())
}

// DefaultDeps returns production dependencies.
func DefaultDeps() *Dependencies {
	return &Dependencies{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
		Signals: func() (<-chan os.Signal, func()) {
			ch := make(chan os.Signal, 1)
			signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
			return ch, func() { signal.Stop(ch) }
		},
	}
}
