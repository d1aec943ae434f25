package errors

import (
	"fmt"
	"testing"
)

func TestMemolishError_Error(t *testing.T) {
	err := &MemolishError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "memo not found",
	}

	expected := "NOT_FOUND: memo not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("content is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "content is required" {
		t.Errorf("Message = %q, want %q", err.Message, "content is required")
	}
}

func TestNewUnauthenticated_DefaultMessage(t *testing.T) {
	err := NewUnauthenticated("")

	if err.Code != ErrUnauthenticated {
		t.Errorf("Code = %q, want %q", err.Code, ErrUnauthenticated)
	}
	if err.Status != 401 {
		t.Errorf("Status = %d, want 401", err.Status)
	}
	if err.Message == "" {
		t.Error("Message should not be empty when constructed with empty string")
	}
}

func TestNewNoCredits(t *testing.T) {
	err := NewNoCredits("daily limit reached")

	if err.Code != ErrNoCredits {
		t.Errorf("Code = %q, want %q", err.Code, ErrNoCredits)
	}
	if err.Status != 402 {
		t.Errorf("Status = %d, want 402", err.Status)
	}
	if err.Message != "daily limit reached" {
		t.Errorf("Message = %q, want %q", err.Message, "daily limit reached")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("42")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "42" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "42")
	}
}

func TestNewTransformInFlight(t *testing.T) {
	err := NewTransformInFlight(7)

	if err.Code != ErrTransformInFlight {
		t.Errorf("Code = %q, want %q", err.Code, ErrTransformInFlight)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["id"] != 7 {
		t.Errorf("Details[id] = %v, want 7", err.Details["id"])
	}
}

func TestNewBackend(t *testing.T) {
	t.Run("with backend code", func(t *testing.T) {
		err := NewBackend(402, "NO_CREDITS", "credits exhausted")

		// Backend code must pass through unmodified so callers can branch on it
		if err.Code != ErrNoCredits {
			t.Errorf("Code = %q, want %q", err.Code, ErrNoCredits)
		}
		if err.Status != 402 {
			t.Errorf("Status = %d, want 402", err.Status)
		}
		if err.Message != "credits exhausted" {
			t.Errorf("Message = %q, want %q", err.Message, "credits exhausted")
		}
	})

	t.Run("without backend code", func(t *testing.T) {
		err := NewBackend(502, "", "")

		if err.Code != ErrBackend {
			t.Errorf("Code = %q, want %q", err.Code, ErrBackend)
		}
		if err.Message == "" {
			t.Error("Message should default to a status description")
		}
	})
}

func TestNewNetwork(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		err := NewNetwork(fmt.Errorf("connection refused"))

		if err.Code != ErrNetwork {
			t.Errorf("Code = %q, want %q", err.Code, ErrNetwork)
		}
		if err.Status != 0 {
			t.Errorf("Status = %d, want 0 (no response)", err.Status)
		}
		if err.Message != "connection refused" {
			t.Errorf("Message = %q, want %q", err.Message, "connection refused")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewNetwork(nil)
		if err.Message != "network error" {
			t.Errorf("Message = %q, want %q", err.Message, "network error")
		}
	})
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("template execution failed"))

	if err.Code != ErrInternal {
		t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
	}
	if err.Status != 500 {
		t.Errorf("Status = %d, want 500", err.Status)
	}
	if err.Message != "template execution failed" {
		t.Errorf("Message = %q, want %q", err.Message, "template execution failed")
	}
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if !Is(err, ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if Is(err, ErrNoCredits) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("non-MemolishError", func(t *testing.T) {
		err := fmt.Errorf("plain error")
		if Is(err, ErrNotFound) {
			t.Error("Is() = true, want false for non-MemolishError")
		}
	})

	t.Run("wrapped MemolishError", func(t *testing.T) {
		inner := NewNoCredits("")
		wrapped := fmt.Errorf("transform: %w", inner)
		if !Is(wrapped, ErrNoCredits) {
			t.Error("Is() = false, want true for wrapped MemolishError")
		}
		if Is(wrapped, ErrNotFound) {
			t.Error("Is() = true, want false for wrong code on wrapped MemolishError")
		}
	})
}
