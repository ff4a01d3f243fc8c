package httputil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

var fast = Policy{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestRetry(t *testing.T) {
	transient := &RetryableError{Err: errors.New("reset")}
	permanent := errors.New("bad request")

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{"success first try", []error{nil}, 1, nil},
		{"success after retry", []error{transient, nil}, 2, nil},
		{"permanent error", []error{permanent}, 1, permanent},
		{"exhausted", []error{transient, transient, transient}, 3, transient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), fast, func() error {
				err := tt.errs[calls]
				calls++
				return err
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, Policy{Attempts: 5, Delay: time.Hour}, func() error {
		calls++
		cancel()
		return &RetryableError{Err: errors.New("down")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryZeroAttempts(t *testing.T) {
	calls := 0
	_ = Retry(context.Background(), Policy{}, func() error { calls++; return nil })
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   bool
		retryable bool
		notFound  bool
	}{
		{http.StatusOK, false, false, false},
		{http.StatusNoContent, false, false, false},
		{http.StatusNotFound, true, false, true},
		{http.StatusBadRequest, true, false, false},
		{http.StatusTooManyRequests, true, true, false},
		{http.StatusBadGateway, true, true, false},
	}
	for _, tt := range tests {
		err := CheckStatus(tt.code)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckStatus(%d) = %v", tt.code, err)
			continue
		}
		if IsRetryable(err) != tt.retryable {
			t.Errorf("CheckStatus(%d) retryable = %v, want %v", tt.code, IsRetryable(err), tt.retryable)
		}
		if errors.Is(err, ErrNotFound) != tt.notFound {
			t.Errorf("CheckStatus(%d) not found = %v", tt.code, errors.Is(err, ErrNotFound))
		}
		if tt.retryable && !errors.Is(err, ErrNetwork) {
			t.Errorf("CheckStatus(%d) should wrap ErrNetwork", tt.code)
		}
	}
}

func TestNewClient(t *testing.T) {
	if c := NewClient(0); c.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}
	if c := NewClient(time.Second); c.Timeout != time.Second {
		t.Errorf("Timeout = %v", c.Timeout)
	}
}
