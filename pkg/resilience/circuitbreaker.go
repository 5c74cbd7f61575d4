package resilience

import (
	"context"
	"sync"
	"time"
)

// CircuitBreaker implements the classic closed/open/half-open state machine:
// failures accumulate in Closed until FailureThreshold trips the circuit to
// Open; after Timeout it moves to HalfOpen and lets calls through again (their
// number is not limited) to probe recovery; SuccessThreshold consecutive successes in HalfOpen close
// it again, while any failure in HalfOpen reopens it immediately.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu          sync.Mutex
	state       State
	failures    int64
	successes   int64
	openedAt    time.Time
}

// NewCircuitBreaker constructs a CircuitBreaker in the Closed state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, state: StateClosed}
}

// State returns the circuit breaker's current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// currentStateLocked resolves Open -> HalfOpen transitions lazily, based on
// elapsed time, rather than with a background timer.
func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.cfg.Timeout {
		cb.transitionLocked(StateHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) transitionLocked(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.successes = 0
	if to == StateOpen {
		cb.openedAt = time.Now()
	}
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, from, to)
	}
}

// ErrCircuitOpen is returned by Execute when the circuit is open and the call
// is rejected without ever reaching fn.
var ErrCircuitOpen = &circuitOpenError{}

type circuitOpenError struct{}

func (*circuitOpenError) Error() string { return "resilience: circuit breaker is open" }

// Execute runs fn if the circuit allows it, recording the outcome to drive
// the state machine.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn Executor) error {
	cb.mu.Lock()
	state := cb.currentStateLocked()
	if state == StateOpen {
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := fn(ctx)

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
			cb.transitionLocked(StateOpen)
		}
		return err
	}

	if cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.transitionLocked(StateClosed)
		}
	} else {
		cb.failures = 0
	}
	return nil
}
