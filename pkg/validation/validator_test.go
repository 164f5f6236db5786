package validation

import (
	"errors"
	"strings"
	"testing"
)

type taggedConfig struct {
	Target  string `validate:"required,nodeid"`
	Format  string `validate:"oneof=text json yaml"`
	Workers int    `validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name        string
		value       taggedConfig
		expectError bool
		errorField  string
	}{
		{"valid", taggedConfig{Target: "02ab", Format: "json"}, false, ""},
		{"missing target", taggedConfig{Format: "text"}, true, "Target"},
		{"whitespace target", taggedConfig{Target: "a b", Format: "text"}, true, "Target"},
		{"bad format", taggedConfig{Target: "A", Format: "xml"}, true, "Format"},
		{"negative workers", taggedConfig{Target: "A", Format: "text", Workers: -2}, true, "Workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.value)
			if tt.expectError && err == nil {
				t.Fatal("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if tt.expectError && !strings.Contains(err.Error(), tt.errorField) {
				t.Errorf("Expected error mentioning %s, got: %v", tt.errorField, err)
			}
		})
	}
}

func TestStruct_NodeIDSentinel(t *testing.T) {
	err := Struct(taggedConfig{Target: "bad\tid", Format: "text"})
	if !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("Expected ErrInvalidNodeID, got %v", err)
	}
}

func TestStruct_Nil(t *testing.T) {
	if err := Struct(nil); err == nil {
		t.Error("Expected error for nil value")
	}
}

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		id          string
		expectError bool
	}{
		{"A", false},
		{"02" + strings.Repeat("ab", 32), false},
		{"", true},
		{"has space", true},
		{"line\nbreak", true},
		{strings.Repeat("x", MaxNodeIDLength+1), true},
	}

	for _, tt := range tests {
		err := ValidateNodeID(tt.id)
		if (err != nil) != tt.expectError {
			t.Errorf("ValidateNodeID(%q) error = %v, expectError %v", tt.id, err, tt.expectError)
		}
		if err != nil && !errors.Is(err, ErrInvalidNodeID) {
			t.Errorf("ValidateNodeID(%q) = %v, want ErrInvalidNodeID", tt.id, err)
		}
	}
}

func TestIsPubKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"02" + strings.Repeat("ab", 32), true},
		{"03" + strings.Repeat("CD", 32), true},
		{"04" + strings.Repeat("ab", 32), false},
		{"02" + strings.Repeat("zz", 32), false},
		{"02ab", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsPubKey(tt.key); got != tt.want {
			t.Errorf("IsPubKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
