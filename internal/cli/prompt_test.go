package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestConfirm(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		interactive bool
		want        PromptResult
		prompted    bool
	}{
		{"yes", "y\n", true, PromptResult{Accepted: true}, true},
		{"YES with spaces", "  YES \n", true, PromptResult{Accepted: true}, true},
		{"no", "n\n", true, PromptResult{}, true},
		{"enter defaults to no", "\n", true, PromptResult{}, true},
		{"eof declines", "", true, PromptResult{}, true},
		{"non-interactive never asks", "y\n", false, PromptResult{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := Confirm(&out, strings.NewReader(tt.input), "Delete?", tt.interactive)

			assert.Equal(t, tt.want, got)
			if tt.prompted {
				assert.Equal(t, "? Delete? [y/N] ", out.String())
			} else {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestConfirm_ReadError(t *testing.T) {
	got := Confirm(&bytes.Buffer{}, failingReader{}, "Delete?", true)
	assert.True(t, got.Cancelled)
	assert.False(t, got.Accepted)
}
