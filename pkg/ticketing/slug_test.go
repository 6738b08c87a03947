package ticketing

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Simple", "Partnership", "partnership"},
		{"Spaces", "Staff Management", "staff_management"},
		{"Accents", "Él Niño", "el_nino"},
		{"WhitespaceRuns", "  Hello \t  World\n ", "hello_world"},
		{"Punctuation", "a/b\\c!?.", "abc"},
		{"KeepsDashAndUnderscore", "re-open_now", "re-open_now"},
		{"Emoji", "\U0001F91D Partner", "partner"},
		{"FullWidth", "ＦＵＬＬ width", "full_width"},
		{"NonDecomposable", "straße", "strae"},
		{"Empty", "", ""},
		{"Truncated", strings.Repeat("a", 100), strings.Repeat("a", 80)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugify_IdempotentAndSafe(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9_-]{0,80}$`)

	inputs := []string{
		"Staff Management",
		"Partnership",
		"Other",
		"Autre demande ❓",
		"  ----  ",
		"Ça va? Très bien!",
		"日本語のカテゴリ",
		"MiXeD CaSe 123",
		strings.Repeat("é ", 60),
		"tab\tseparated\tvalues",
	}

	for _, in := range inputs {
		once := Slugify(in)
		require.Regexp(t, valid, once, "input %q", in)
		require.Equal(t, once, Slugify(once), "input %q", in)
	}
}
