package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.Required("Target", "")

	if !cv.HasErrors() {
		t.Error("Expected error for empty required field")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.Required("Target", "02ab")

	if cv2.HasErrors() {
		t.Error("Expected no error for non-empty required field")
	}
}

func TestConfigValidator_NonNegative(t *testing.T) {
	tests := []struct {
		name    string
		apply   func(*ConfigValidator)
		wantErr bool
	}{
		{"int zero", func(cv *ConfigValidator) { cv.NonNegative("Workers", 0) }, false},
		{"int negative", func(cv *ConfigValidator) { cv.NonNegative("Workers", -1) }, true},
		{"int64 zero", func(cv *ConfigValidator) { cv.NonNegative64("MinCapacity", 0) }, false},
		{"int64 negative", func(cv *ConfigValidator) { cv.NonNegative64("MinCapacity", -5) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("TestConfig")
			tt.apply(cv)
			if cv.HasErrors() != tt.wantErr {
				t.Errorf("HasErrors() = %v, want %v", cv.HasErrors(), tt.wantErr)
			}
		})
	}
}

func TestConfigValidator_MaxInt(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.MaxInt("Workers", 100, 50)

	if !cv.HasErrors() {
		t.Error("Expected error for value above maximum")
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	allowed := []string{"text", "json", "yaml"}

	cv := NewConfigValidator("TestConfig")
	cv.OneOf("Format", "xml", allowed)
	if !cv.HasErrors() {
		t.Error("Expected error for value not in allowed list")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.OneOf("Format", "yaml", allowed)
	if cv2.HasErrors() {
		t.Error("Expected no error for allowed value")
	}
}

func TestConfigValidator_CustomPreservesSentinel(t *testing.T) {
	sentinel := errors.New("conflict")

	err := NewConfigValidator("TestConfig").
		Custom("Thresholds", func() error { return sentinel }).
		Validate()

	if !errors.Is(err, sentinel) {
		t.Errorf("Expected wrapped sentinel, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "TestConfig.Thresholds:") {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestConfigValidator_When(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.When(false, func(cv *ConfigValidator) { cv.Required("Skipped", "") })
	if cv.HasErrors() {
		t.Error("When(false) should not run validations")
	}

	cv.When(true, func(cv *ConfigValidator) { cv.Required("Checked", "") })
	if !cv.HasErrors() {
		t.Error("When(true) should run validations")
	}
}

func TestConfigValidator_ValidateJoinsAll(t *testing.T) {
	first := errors.New("first")
	err := NewConfigValidator("TestConfig").
		Required("Target", "").
		NonNegative("Workers", -1).
		Custom("Other", func() error { return first }).
		Validate()

	if err == nil {
		t.Fatal("Expected error")
	}
	if !errors.Is(err, first) {
		t.Error("Joined error lost a wrapped cause")
	}
	for _, field := range []string{"Target", "Workers", "Other"} {
		if !strings.Contains(err.Error(), "TestConfig."+field) {
			t.Errorf("Joined error missing %s: %v", field, err)
		}
	}
}

func TestConfigValidator_NoErrors(t *testing.T) {
	cv := NewConfigValidator("TestConfig").Required("Target", "x")
	if err := cv.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if cv.HasErrors() {
		t.Error("HasErrors() = true, want false")
	}
}

func TestDefaultOr(t *testing.T) {
	if got := DefaultOr("", "text"); got != "text" {
		t.Errorf("DefaultOr(\"\", text) = %q", got)
	}
	if got := DefaultOr("json", "text"); got != "json" {
		t.Errorf("DefaultOr(json, text) = %q", got)
	}
	if got := DefaultOr(0, 8); got != 8 {
		t.Errorf("DefaultOr(0, 8) = %d", got)
	}
}
