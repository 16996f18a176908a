package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodePackageNotFound, "package %q not found", "signals")

	if err.Code != ErrCodePackageNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodePackageNotFound)
	}
	if err.Message != `package "signals" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("Cause = %v, want nil", err.Cause)
	}
	if !strings.Contains(err.Error(), "PACKAGE_NOT_FOUND") {
		t.Errorf("Error() = %q, want code prefix", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch index")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if got := err.Error(); !strings.Contains(got, "connection refused") {
		t.Errorf("Error() = %q, want cause included", got)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeCircularDependency, "cycle detected")

	if !Is(err, ErrCodeCircularDependency) {
		t.Error("Is() should match the error's code")
	}
	if Is(err, ErrCodeNetwork) {
		t.Error("Is() should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeNetwork) {
		t.Error("Is() should not match plain errors")
	}
}

func TestIsWrappedChain(t *testing.T) {
	inner := New(ErrCodePackageNotFound, "no such package")
	outer := fmt.Errorf("planning failed: %w", inner)

	if !Is(outer, ErrCodePackageNotFound) {
		t.Error("Is() should unwrap standard wrapping")
	}
	if GetCode(outer) != ErrCodePackageNotFound {
		t.Errorf("GetCode() = %q, want %q", GetCode(outer), ErrCodePackageNotFound)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidManifest, "manifest is not valid JSON")
	if got := UserMessage(err); got != "manifest is not valid JSON" {
		t.Errorf("UserMessage() = %q", got)
	}

	plain := stderrors.New("boom")
	if got := UserMessage(plain); got != "boom" {
		t.Errorf("UserMessage() = %q, want %q", got, "boom")
	}
}
