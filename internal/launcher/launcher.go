// Package launcher opens the dashboard in the default browser shortly after
// the server starts.
//
// Launching is skipped in managed environments (containers, hosted
// platforms) where no desktop browser exists. Detection is by the presence of
// any configured environment variable.
package launcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/browser"
)

// Opener opens url in a browser.
type Opener func(url string) error

// DefaultOpener opens url with the platform's default browser.
func DefaultOpener(url string) error {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return browser.OpenURL(url)
}

// Managed returns the first variable in vars that is set to a non-empty
// value in the environment.
func Managed(vars []string) (string, bool) {
	return managedBy(vars, os.LookupEnv)
}

func managedBy(vars []string, lookup func(string) (string, bool)) (string, bool) {
	for _, v := range vars {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if val, ok := lookup(v); ok && strings.TrimSpace(val) != "" {
			return v, true
		}
	}
	return "", false
}

// Open waits delay and then opens url with opener on a separate goroutine.
// It returns immediately. The returned channel receives the opener's result
// and is closed afterwards; it is closed without a value if ctx ends first.
// Callers that do not care about the outcome may ignore it.
func Open(ctx context.Context, url string, delay time.Duration, opener Opener) <-chan error {
	if opener == nil {
		opener = DefaultOpener
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		err := opener(url)
		if err != nil {
			slog.Warn("could not open browser", "url", url, "error", err)
		} else {
			slog.Info("opened dashboard in browser", "url", url)
		}
		done <- err
	}()
	return done
}

// Options controls Launch.
type Options struct {
	Enabled    bool
	Delay      time.Duration
	ManagedEnv []string
	Opener     Opener
}

// Launch opens url unless launching is disabled or a managed environment is
// detected. It reports whether a launch was scheduled.
func Launch(ctx context.Context, url string, opts Options) bool {
	if !opts.Enabled {
		slog.Debug("browser launch disabled")
		return false
	}
	if name, ok := Managed(opts.ManagedEnv); ok {
		slog.Info("managed environment detected, not opening browser", "env", name)
		return false
	}
	Open(ctx, url, opts.Delay, opts.Opener)
	return true
}
