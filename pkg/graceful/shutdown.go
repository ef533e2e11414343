package graceful

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rail-service/bridge_sdk/pkg/logger"
)

// ShutdownFunc releases one component
type ShutdownFunc func(ctx context.Context) error

type hook struct {
	name string
	fn   ShutdownFunc
}

// ShutdownManager runs registered hooks once, newest first
type ShutdownManager struct {
	mu     sync.Mutex
	hooks  []hook
	done   bool
	logger *logger.Logger
}

func NewShutdownManager(log *logger.Logger) *ShutdownManager {
	if log == nil {
		log = logger.Nop()
	}
	return &ShutdownManager{logger: log}
}

// Register adds a hook; hooks registered after Shutdown are ignored
func (sm *ShutdownManager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.done {
		return
	}
	sm.hooks = append(sm.hooks, hook{name: name, fn: fn})
}

// Shutdown runs every hook within timeout and joins their errors
func (sm *ShutdownManager) Shutdown(ctx context.Context, timeout time.Duration) error {
	sm.mu.Lock()
	if sm.done {
		sm.mu.Unlock()
		return nil
	}
	sm.done = true
	hooks := sm.hooks
	sm.hooks = nil
	sm.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := h.fn(ctx); err != nil {
			sm.logger.Warn("Component shutdown error", "component", h.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
		}
	}
	return errors.Join(errs...)
}

// NotifyContext returns a context cancelled on SIGINT or SIGTERM
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
