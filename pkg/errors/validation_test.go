package errors

import (
	"strings"
	"testing"
)

func TestValidateCrateName(t *testing.T) {
	valid := []string{"serde", "serde_json", "tokio-util", "base64", "R2D2", strings.Repeat("a", 64)}
	for _, name := range valid {
		if err := ValidateCrateName(name); err != nil {
			t.Errorf("ValidateCrateName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		strings.Repeat("a", 65),
		"9serde",
		"_serde",
		"serde.json",
		"../serde",
		"serde/json",
		`serde\json`,
		"serde\x00",
		"serde\n",
		"sérde",
	}
	for _, name := range invalid {
		err := ValidateCrateName(name)
		if !Is(err, ErrCodeInvalidPackage) {
			t.Errorf("ValidateCrateName(%q) = %v, want INVALID_PACKAGE", name, err)
		}
	}
}
