package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidPrompt, "prompt must not be empty")

	if err.Code != ErrCodeInvalidPrompt {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidPrompt)
	}
	if err.Message != "prompt must not be empty" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("Cause = %v, want nil", err.Cause)
	}
}

func TestNewFormatting(t *testing.T) {
	err := New(ErrCodeInvalidDuration, "duration %ds out of range [%d,%d]", 45, 1, 30)
	want := "INVALID_DURATION: duration 45s out of range [1,30]"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "failed to reach registry")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeTrackNotFound, "no such track")

	if !Is(err, ErrCodeTrackNotFound) {
		t.Error("Is should match the error's code")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeInternal) {
		t.Error("Is should not match plain errors")
	}
}

func TestIsThroughWrapping(t *testing.T) {
	inner := New(ErrCodeInvalidManifest, "bad line")
	outer := fmt.Errorf("parse: %w", inner)

	if !Is(outer, ErrCodeInvalidManifest) {
		t.Error("Is should unwrap fmt.Errorf chains")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeRateLimited, "slow down")); got != ErrCodeRateLimited {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeRateLimited)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode = %q, want empty", got)
	}
	wrapped := fmt.Errorf("fetch: %w", &RateLimitedError{RetryAfter: 5})
	if got := GetCode(wrapped); got != ErrCodeRateLimited {
		t.Errorf("GetCode = %q, want %q for coder errors", got, ErrCodeRateLimited)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidPrompt, "prompt must not be empty")
	if got := UserMessage(err); got != "prompt must not be empty" {
		t.Errorf("UserMessage = %q", got)
	}

	plain := stderrors.New("something broke")
	if got := UserMessage(plain); got != "something broke" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestRateLimitedError(t *testing.T) {
	err := &RateLimitedError{RetryAfter: 30}
	want := "rate limited: retry after 30 seconds"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if (&RateLimitedError{}).Error() != "rate limited" {
		t.Error("zero RetryAfter should omit the retry hint")
	}
	if err.Code() != ErrCodeRateLimited {
		t.Errorf("Code() = %q", err.Code())
	}
}
