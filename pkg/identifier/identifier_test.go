package identifier

import (
	"errors"
	"strings"
	"testing"

	"pattern-sphere-be/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "title", wantErr: false},
		{name: "mixed charset", input: "Hero_image-2", wantErr: false},
		{name: "exactly max length", input: strings.Repeat("a", MaxLength), wantErr: false},
		{name: "single dash", input: "-", wantErr: false},
		{name: "f without dash", input: "foo", wantErr: false},
		{name: "dash f prefix elsewhere", input: "af-b", wantErr: false},
		{name: "too long", input: strings.Repeat("a", MaxLength+1), wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "space", input: "my feature", wantErr: true},
		{name: "dot", input: "a.b", wantErr: true},
		{name: "quote", input: "a'b", wantErr: true},
		{name: "semicolon", input: "x;drop", wantErr: true},
		{name: "non ascii", input: "café", wantErr: true},
		{name: "reserved prefix", input: "f-title", wantErr: true},
		{name: "reserved prefix alone", input: "f-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, apperror.ErrInvalidIdentifier))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUppercaseReservedPrefixIsAllowed(t *testing.T) {
	// the prefix check is case-sensitive, matching form input naming
	assert.NoError(t, Validate("F-title"))
}
