package llm

import (
	"errors"
	"testing"
)

func TestNewProviderUnknown(t *testing.T) {
	if _, err := NewProvider("does-not-exist"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRegisterAndNewProvider(t *testing.T) {
	RegisterProvider("test-stub", func() (Engine, error) {
		return nil, errors.New("factory ran")
	})

	_, err := NewProvider("test-stub")
	if err == nil || err.Error() != "factory ran" {
		t.Fatalf("expected factory to run, got %v", err)
	}
}
