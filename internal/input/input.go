// Package input gathers the text sent as the user message.
package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/brianbirrell/ai-cli/internal/logger"

	"github.com/mattn/go-isatty"
)

// InteractiveBanner is shown before reading a terminal stdin.
const InteractiveBanner = "Enter the data you'd like the AI to work on (Ctrl+D to submit):\n"

// Error reports a source that could not be read.
type Error struct {
	// Source is a file path or "stdin".
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Source == "stdin" {
		return fmt.Sprintf("failed to read from stdin: %v", e.Err)
	}
	return fmt.Sprintf("failed to read file %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var errNotUTF8 = errors.New("content is not valid UTF-8 text")

// Aggregator reads files or stdin and builds the message body.
type Aggregator struct {
	Stdin io.Reader
	// PromptOut receives the interactive banner.
	PromptOut io.Writer
	// IsTerminal reports whether Stdin is an interactive terminal. Defaults
	// to checking Stdin when it is an *os.File.
	IsTerminal func() bool
	Log        *logger.Logger
}

// NewAggregator creates an Aggregator over the given stdin.
func NewAggregator(stdin io.Reader, promptOut io.Writer, log *logger.Logger) *Aggregator {
	return &Aggregator{Stdin: stdin, PromptOut: promptOut, Log: log}
}

// Read returns the concatenated input. Named files are read in order, each
// followed by a newline, and stdin is left alone. Without files, stdin is
// read to EOF, after a banner when it is a terminal. A non-nil prompt is
// prepended as "Prompt: <text>\n".
func (a *Aggregator) Read(files []string, prompt *string) (string, error) {
	log := a.Log
	if log == nil {
		log = logger.Discard()
	}

	var b strings.Builder

	if len(files) > 0 {
		log.Info("Reading input from %d file(s)", len(files))
		for i, path := range files {
			log.Debug("Reading file %d: %s", i+1, path)
			data, err := os.ReadFile(path)
			if err != nil {
				return "", &Error{Source: path, Err: err}
			}
			if !utf8.Valid(data) {
				return "", &Error{Source: path, Err: errNotUTF8}
			}
			b.Write(data)
			b.WriteByte('\n')
			log.Debug("File %d read successfully, content length: %d", i+1, len(data))
		}
		log.Debug("Skipping stdin as files were provided")
	} else {
		if a.isTerminal() {
			log.Info("Reading input from terminal (interactive mode)")
			if a.PromptOut != nil {
				if _, err := io.WriteString(a.PromptOut, InteractiveBanner); err != nil {
					return "", &Error{Source: "stdin", Err: err}
				}
			}
		} else {
			log.Info("Reading input from stdin (pipe mode)")
		}
		data, err := a.readStdin()
		if err != nil {
			return "", err
		}
		b.Write(data)
		log.Debug("Stdin input received, length: %d", len(data))
	}

	body := b.String()
	if prompt != nil {
		log.Debug("Adding prompt to input: %s", *prompt)
		body = "Prompt: " + *prompt + "\n" + body
	}

	log.Info("Total input length: %d characters", len(body))
	return body, nil
}

func (a *Aggregator) readStdin() ([]byte, error) {
	if a.Stdin == nil {
		return nil, nil
	}
	data, err := io.ReadAll(a.Stdin)
	if err != nil {
		return nil, &Error{Source: "stdin", Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &Error{Source: "stdin", Err: errNotUTF8}
	}
	return data, nil
}

func (a *Aggregator) isTerminal() bool {
	if a.IsTerminal != nil {
		return a.IsTerminal()
	}
	return IsTerminal(a.Stdin)
}

// IsTerminal reports whether r is a terminal file.
func IsTerminal(r any) bool {
	f, ok := r.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
