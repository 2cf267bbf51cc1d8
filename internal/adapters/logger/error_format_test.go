package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/roster/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"standard error", errors.New("simple"), []string{"simple"}},
		{"zerr single", zerr.New("zerr error"), []string{"zerr error"}},
		{
			"zerr chain",
			zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle"), "outer"),
			[]string{"outer", "middle", "root cause"},
		},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntries(tt.err)
			var got []string
			for _, e := range entries {
				got = append(got, e.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{"single", []logger.ErrorEntry{{Message: "single error"}}, "Error: single error"},
		{
			"caused by",
			[]logger.ErrorEntry{{Message: "outer"}, {Message: "inner"}},
			"Error: outer\n\n  Caused by:\n    → inner",
		},
		{
			"three levels",
			[]logger.ErrorEntry{{Message: "first"}, {Message: "second"}, {Message: "third"}},
			"Error: first\n\n  Caused by:\n    → second\n    → third",
		},
		{
			"multiline",
			[]logger.ErrorEntry{{Message: "line1\nline2"}, {Message: "cause1\ncause2"}},
			"Error: line1\n       line2\n\n  Caused by:\n    → cause1\n      cause2",
		},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}
