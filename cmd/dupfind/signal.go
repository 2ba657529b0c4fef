package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

// watchSignals cancels the run on the first SIGINT or SIGTERM and exits on the
// second. It returns once done is closed.
func watchSignals(done <-chan struct{}, cancel context.CancelFunc, logger zerolog.Logger) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Warn().Stringer("signal", sig).Msg("received signal, stopping after the current file")
		cancel()
	case <-done:
		return
	}

	select {
	case <-sigChan:
		os.Exit(exitCancelled)
	case <-done:
	}
}
