package slug_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/cms/internal/slug"
)

func TestGenerate(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Hello World!", "hello-world"},
		{"Hello   World", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Already-Hyphenated--Title", "already-hyphenated-title"},
		{"Ünïcode & Symbols #42", "ncode-symbols-42"},
		{"...", ""},
		{"UPPER", "upper"},
		{"a - b - c", "a-b-c"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, slug.Generate(tc.title), "title %q", tc.title)
	}
}

func TestGenerateShape(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9-]*$`)
	titles := []string{
		"Hello World!",
		"What's New in 2024?",
		"--- odd --- input ---",
		"tabs\tand\nnewlines",
		"",
	}
	for _, title := range titles {
		got := slug.Generate(title)
		assert.Regexp(t, valid, got)
		if got != "" {
			assert.NotEqual(t, byte('-'), got[0])
			assert.NotEqual(t, byte('-'), got[len(got)-1])
		}
		assert.NotContains(t, got, "--")
	}
}

func TestEnsureFreeBase(t *testing.T) {
	got, err := slug.Ensure("hello-world", func(string) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hello-world", got)
}

func TestEnsureProbesLowestFree(t *testing.T) {
	taken := map[string]bool{
		"hello-world":   true,
		"hello-world-1": true,
		"hello-world-2": true,
	}
	got, err := slug.Ensure("hello-world", func(s string) (bool, error) {
		return taken[s], nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hello-world-3", got)
}

func TestEnsureSkipsGaps(t *testing.T) {
	// base taken, base-1 free: the lowest-numbered candidate wins even
	// when higher suffixes are also taken.
	taken := map[string]bool{
		"post":   true,
		"post-2": true,
	}
	got, err := slug.Ensure("post", func(s string) (bool, error) {
		return taken[s], nil
	})
	require.NoError(t, err)
	assert.Equal(t, "post-1", got)
}

func TestEnsurePropagatesProbeError(t *testing.T) {
	wantErr := assert.AnError
	_, err := slug.Ensure("x", func(string) (bool, error) {
		return false, wantErr
	})
	require.ErrorIs(t, err, wantErr)
}
