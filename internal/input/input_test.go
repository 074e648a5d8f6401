package input

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, contents ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(contents))
	for i, c := range contents {
		paths[i] = filepath.Join(dir, string(rune('a'+i))+".txt")
		require.NoError(t, os.WriteFile(paths[i], []byte(c), 0o644))
	}
	return paths
}

func pipe(stdin string) *Aggregator {
	return &Aggregator{
		Stdin:      strings.NewReader(stdin),
		IsTerminal: func() bool { return false },
	}
}

func TestRead_FilesInOrder(t *testing.T) {
	files := writeFiles(t, "foo", "bar")

	got, err := pipe("ignored").Read(files, nil)
	require.NoError(t, err)
	assert.Equal(t, "foo\nbar\n", got)
}

func TestRead_FilesWithPrompt(t *testing.T) {
	files := writeFiles(t, "foo", "bar")
	prompt := "Q"

	got, err := pipe("").Read(files, &prompt)
	require.NoError(t, err)
	assert.Equal(t, "Prompt: Q\nfoo\nbar\n", got)
}

func TestRead_FilesDoNotTouchStdin(t *testing.T) {
	files := writeFiles(t, "x")
	stdin := strings.NewReader("stdin data")
	a := &Aggregator{Stdin: stdin, IsTerminal: func() bool { return false }}

	_, err := a.Read(files, nil)
	require.NoError(t, err)
	assert.Equal(t, len("stdin data"), stdin.Len())
}

func TestRead_PipedStdin(t *testing.T) {
	got, err := pipe("piped text\nmore").Read(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "piped text\nmore", got)
}

func TestRead_PipedStdinWithPrompt(t *testing.T) {
	prompt := "Translate"
	got, err := pipe("hola").Read(nil, &prompt)
	require.NoError(t, err)
	assert.Equal(t, "Prompt: Translate\nhola", got)
}

func TestRead_InteractiveShowsBanner(t *testing.T) {
	var banner bytes.Buffer
	a := &Aggregator{
		Stdin:      strings.NewReader("typed"),
		PromptOut:  &banner,
		IsTerminal: func() bool { return true },
	}

	got, err := a.Read(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "typed", got)
	assert.Equal(t, InteractiveBanner, banner.String())
}

func TestRead_PipeShowsNoBanner(t *testing.T) {
	var banner bytes.Buffer
	a := pipe("x")
	a.PromptOut = &banner

	_, err := a.Read(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, banner.String())
}

func TestRead_MissingFile(t *testing.T) {
	files := writeFiles(t, "ok")
	missing := filepath.Join(t.TempDir(), "nope.txt")

	_, err := pipe("").Read(append(files, missing), nil)

	var ierr *Error
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, missing, ierr.Source)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "nope.txt")
}

func TestRead_InvalidUTF8Stdin(t *testing.T) {
	_, err := pipe("\xff\xfe").Read(nil, nil)

	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "stdin", ierr.Source)
}

func TestRead_EmptyPrompt(t *testing.T) {
	empty := ""
	got, err := pipe("body").Read(nil, &empty)
	require.NoError(t, err)
	assert.Equal(t, "Prompt: \nbody", got)
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, IsTerminal(strings.NewReader("")))
}
