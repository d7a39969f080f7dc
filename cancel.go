package onionfetch

import (
	"errors"
	"sync"
)

// Cancel is the value a request fails with when its CancelToken is cancelled.
// It may arrive wrapped; match it with errors.As.
type Cancel struct {
	Message string
}

func (c *Cancel) Error() string {
	if c.Message != "" {
		return "Cancel: " + c.Message
	}
	return "Cancel"
}

// IsCancel reports whether err originated from a CancelToken,
// as opposed to a timeout or a transport failure.
// A *Cancel may reach the caller wrapped in an *AnnotatedError, so use
// IsCancel or errors.As rather than a type assertion.
func IsCancel(err error) bool {
	var c *Cancel
	return errors.As(err, &c)
}

// CancelFunc requests cancellation. Only the first call has any effect.
type CancelFunc func(message string)

// CancelToken is a cooperative cancellation signal.
// Once cancelled it stays cancelled.
type CancelToken struct {
	once   sync.Once
	done   chan struct{}
	mu     sync.Mutex
	reason *Cancel
}

// CancelSource pairs a token with the function that cancels it
type CancelSource struct {
	Token  *CancelToken
	Cancel CancelFunc
}

// NewCancelSource returns a fresh token and its cancel function
func NewCancelSource() CancelSource {
	t := &CancelToken{done: make(chan struct{})}
	return CancelSource{Token: t, Cancel: t.cancel}
}

func (t *CancelToken) cancel(message string) {
	t.once.Do(func() {
		t.mu.Lock()
		t.reason = &Cancel{Message: message}
		t.mu.Unlock()
		close(t.done)
	})
}

// Done returns a channel that is closed once cancellation is requested
func (t *CancelToken) Done() <-chan struct{} {
	return t.done
}

// Reason returns the cancellation value, or nil if not yet cancelled
func (t *CancelToken) Reason() *Cancel {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}

// Err returns the cancellation value as an error, or nil
func (t *CancelToken) Err() error {
	if r := t.Reason(); r != nil {
		return r
	}
	return nil
}
