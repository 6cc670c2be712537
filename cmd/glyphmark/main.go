package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"glyphmark/glyph"
	"glyphmark/ocr"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error taxonomy onto stable process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, glyph.ErrInvalidInput):
		return 2
	case errors.Is(err, glyph.ErrPasswordRequired):
		return 3
	case errors.Is(err, glyph.ErrPasswordIncorrect):
		return 4
	case errors.Is(err, ocr.ErrUnavailable):
		return 5
	default:
		return 1
	}
}
