package errors

import "regexp"

// maxCrateNameLen is the crates.io limit.
const maxCrateNameLen = 64

var crateNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidateCrateName checks name against the crates.io naming rules: ASCII
// letters, digits, '-' and '_', starting with a letter. Names are joined
// into registry paths, so this also keeps separators and control
// characters out of the filesystem layer.
func ValidateCrateName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPackage, "crate name cannot be empty")
	case len(name) > maxCrateNameLen:
		return New(ErrCodeInvalidPackage, "crate name longer than %d characters", maxCrateNameLen)
	case !crateNamePattern.MatchString(name):
		return New(ErrCodeInvalidPackage, "invalid crate name %q", name)
	}
	return nil
}
