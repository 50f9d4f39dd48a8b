// Package server manages the lifetime of a command run: a context canceled by
// SIGINT or SIGTERM and the ordered release of the resources the run opened.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Resource is something a run opens and must release, such as a connection pool.
type Resource interface {
	Close() error
}

// CloseFunc adapts a function into the Resource interface.
type CloseFunc func() error

// Close calls the underlying function.
func (f CloseFunc) Close() error { return f() }

// Lifecycle tracks the resources of one run. Resources are released in reverse
// order of registration.
type Lifecycle struct {
	logger    *zap.Logger
	resources []namedResource
	mu        sync.Mutex
	closed    bool
}

type namedResource struct {
	name     string
	resource Resource
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		logger: logger,
	}
}

// Add registers a named resource.
//
// Precondition: name must be non-empty; r must be non-nil.
func (l *Lifecycle) Add(name string, r Resource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resources = append(l.resources, namedResource{name: name, resource: r})
}

// Context returns a child of ctx that is canceled on SIGINT or SIGTERM.
// The returned stop function restores default signal handling.
func (l *Lifecycle) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		if errors.Is(context.Cause(ctx), context.Canceled) {
			return
		}
		l.logger.Info("received signal, canceling run")
	}()
	return ctx, stop
}

// Close releases every resource in reverse order and returns their joined errors.
// Calling Close again is a no-op.
//
// Postcondition: every registered resource has been closed once.
func (l *Lifecycle) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true

	start := time.Now()
	var errs []error
	for i := len(l.resources) - 1; i >= 0; i-- {
		nr := l.resources[i]
		if err := nr.resource.Close(); err != nil {
			l.logger.Warn("closing resource",
				zap.String("resource", nr.name),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("closing %s: %w", nr.name, err))
			continue
		}
		l.logger.Debug("resource closed",
			zap.String("resource", nr.name),
		)
	}
	l.logger.Debug("all resources closed",
		zap.Int("count", len(l.resources)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return errors.Join(errs...)
}
