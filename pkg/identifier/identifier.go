// Package identifier guards names that label features and templates.
package identifier

import (
	"regexp"
	"strings"

	"pattern-sphere-be/pkg/apperror"
)

const (
	// MaxLength is the longest accepted name.
	MaxLength = 32

	// ReservedPrefix namespaces value-field inputs in submitted forms.
	ReservedPrefix = "f-"
)

var allowed = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Validate returns an InvalidIdentifier error when name is unusable.
func Validate(name string) error {
	if len(name) > MaxLength {
		return apperror.InvalidIdentifier("we accept names up to %d characters long; %q is %d", MaxLength, name, len(name))
	}
	if !allowed.MatchString(name) {
		return apperror.InvalidIdentifier("we can't use the name %q; use alphanumeric characters, _, or - only", name)
	}
	if strings.HasPrefix(name, ReservedPrefix) {
		return apperror.InvalidIdentifier("leading %q on names is reserved", ReservedPrefix)
	}
	return nil
}
