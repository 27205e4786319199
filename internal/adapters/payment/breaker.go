package payment

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type circuitBreakerState int

const (
	cbOpen circuitBreakerState = iota
	cbClose
	cbHalfOpen
)

var errBreakerOpen = errors.New("gateway circuit open")

// circuitBreaker keeps the gateway from being hammered while it is refusing
// requests. The request callback returns a retry delay in seconds when the
// gateway asks to back off.
type circuitBreaker struct {
	mu          *sync.Mutex
	expireDelay int64
	state       circuitBreakerState
}

func newCircuitBreaker() *circuitBreaker {
	cb := &circuitBreaker{
		mu:          &sync.Mutex{},
		expireDelay: 0,
		state:       cbClose,
	}

	return cb
}

func (cb *circuitBreaker) execute(request func() (int64, error)) error {
	cb.mu.Lock()
	switch cb.state {
	case cbOpen:
		current := time.Now().Unix()
		if current > cb.expireDelay {
			cb.state = cbHalfOpen
		} else {
			cb.mu.Unlock()
			return fmt.Errorf("%w: %w", ErrGatewayUnavailable, errBreakerOpen)
		}
	case cbHalfOpen:
		cb.state = cbOpen
	default:
	}
	cb.mu.Unlock()

	delay, err := request()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if delay > 0 {
		cb.expireDelay = time.Now().Unix() + delay
		cb.state = cbOpen
	}
	if err != nil {
		if errors.Is(err, ErrGatewayUnavailable) && cb.state != cbOpen {
			cb.state = cbOpen
			cb.expireDelay = time.Now().Unix()
		}
		return fmt.Errorf("request error: %w", err)
	}

	cb.state = cbClose
	return nil
}
