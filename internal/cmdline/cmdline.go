// Package cmdline turns configured command strings into argument vectors.
//
// Hook commands are written in the config as single strings. They are split
// with POSIX shell word rules (quotes and backslash escapes are honoured) but
// never handed to a shell, so variables, globs, pipes and redirections are not
// interpreted. Operators that need those wrap the command explicitly, for
// example `sh -c "pg_dump app > /srv/dumps/app.sql"`.
package cmdline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

// ErrEmpty reports a command string that contains no words.
var ErrEmpty = errors.New("command is empty")

// Split parses a command string into its argument vector.
func Split(command string) ([]string, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return nil, ErrEmpty
	}
	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false
	words, err := parser.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", trimmed, err)
	}
	if parser.Position >= 0 {
		return nil, fmt.Errorf("parse command %q: shell operators are not supported", trimmed)
	}
	if len(words) == 0 {
		return nil, ErrEmpty
	}
	return words, nil
}

// Join renders an argument vector for log output, quoting words that contain
// whitespace or quote characters.
func Join(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, word := range argv {
		if word == "" || strings.ContainsAny(word, " \t\n\"'\\") {
			parts = append(parts, "'"+strings.ReplaceAll(word, "'", `'\''`)+"'")
			continue
		}
		parts = append(parts, word)
	}
	return strings.Join(parts, " ")
}

// Command is an executable and its arguments.
type Command struct {
	Path string
	Args []string
}

// Parse splits a configured command string into a Command.
func Parse(command string) (Command, error) {
	words, err := Split(command)
	if err != nil {
		return Command{}, err
	}
	return Command{Path: words[0], Args: words[1:]}, nil
}

// Argv returns the full argument vector including the executable.
func (c Command) Argv() []string {
	return append([]string{c.Path}, c.Args...)
}

func (c Command) String() string {
	return Join(c.Argv())
}
