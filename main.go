package main

import (
	"context"
	"io"
	"os"

	"mealplan/ui"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

func main() {
	root, closeApp := newRootCmd()

	err := root.ExecuteContext(context.Background())
	if closeErr := closeApp(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func reportError(w io.Writer, err error) {
	ui.NewPrinter(w).Error(err)
}
