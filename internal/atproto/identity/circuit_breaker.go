package identity

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// circuitState represents the state of a circuit breaker
type circuitState int

const (
	stateClosed   circuitState = iota // Normal operation
	stateOpen                         // Directory failing, calls rejected
	stateHalfOpen                     // Testing if directory recovered
)

// circuitBreaker tracks consecutive failures per upstream (one per DID method)
// and stops calling an upstream that keeps failing
type circuitBreaker struct {
	failures         map[string]int
	lastFailure      map[string]time.Time
	state            map[string]circuitState
	lastStateLog     map[string]time.Time
	failureThreshold int
	openDuration     time.Duration
	mu               sync.RWMutex
}

// newCircuitBreaker creates a circuit breaker
func newCircuitBreaker(failureThreshold int, openDuration time.Duration) *circuitBreaker {
	return &circuitBreaker{
		failureThreshold: failureThreshold,
		openDuration:     openDuration,
		failures:         make(map[string]int),
		lastFailure:      make(map[string]time.Time),
		state:            make(map[string]circuitState),
		lastStateLog:     make(map[string]time.Time),
	}
}

// canAttempt checks if we should call this upstream.
// Returns true if the circuit is closed or half-open.
func (cb *circuitBreaker) canAttempt(upstream string) (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state := cb.getState(upstream)
	if state == stateOpen && time.Since(cb.lastFailure[upstream]) > cb.openDuration {
		state = stateHalfOpen
		cb.state[upstream] = stateHalfOpen
		cb.logStateChange(upstream, stateHalfOpen)
	}

	if state != stateOpen {
		return true, nil
	}

	nextRetry := cb.lastFailure[upstream].Add(cb.openDuration)
	return false, fmt.Errorf(
		"%w for %s (failures: %d, next retry: %s)",
		ErrCircuitOpen,
		upstream,
		cb.failures[upstream],
		nextRetry.Format("15:04:05"),
	)
}

// recordSuccess resets failure tracking for the upstream
func (cb *circuitBreaker) recordSuccess(upstream string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.getState(upstream)

	delete(cb.failures, upstream)
	delete(cb.lastFailure, upstream)
	cb.state[upstream] = stateClosed

	if oldState != stateClosed {
		cb.logStateChange(upstream, stateClosed)
	}
}

// recordFailure records a failed lookup and opens the circuit at the threshold
func (cb *circuitBreaker) recordFailure(upstream string, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures[upstream]++
	cb.lastFailure[upstream] = time.Now()
	failCount := cb.failures[upstream]

	// A failed probe while half-open reopens immediately
	if failCount >= cb.failureThreshold || cb.getState(upstream) == stateHalfOpen {
		oldState := cb.getState(upstream)
		cb.state[upstream] = stateOpen
		if oldState != stateOpen {
			log.Printf(
				"[IDENTITY-CIRCUIT] Opening circuit for %s after %d consecutive failures. Last error: %v",
				upstream,
				failCount,
				err,
			)
			cb.lastStateLog[upstream] = time.Now()
		}
		return
	}

	log.Printf(
		"[IDENTITY-CIRCUIT] Failure %d/%d for %s: %v",
		failCount,
		cb.failureThreshold,
		upstream,
		err,
	)
}

// getState returns the current state (must be called with lock held)
func (cb *circuitBreaker) getState(upstream string) circuitState {
	if state, exists := cb.state[upstream]; exists {
		return state
	}
	return stateClosed
}

// logStateChange logs state transitions at most once per minute per upstream
// (must be called with lock held)
func (cb *circuitBreaker) logStateChange(upstream string, newState circuitState) {
	lastLog, exists := cb.lastStateLog[upstream]
	if exists && time.Since(lastLog) < time.Minute {
		return
	}

	var stateStr string
	switch newState {
	case stateClosed:
		stateStr = "CLOSED (recovered)"
	case stateOpen:
		stateStr = "OPEN (failing)"
	case stateHalfOpen:
		stateStr = "HALF-OPEN (testing)"
	}

	log.Printf("[IDENTITY-CIRCUIT] Circuit for %s is now %s", upstream, stateStr)
	cb.lastStateLog[upstream] = time.Now()
}
