package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"tarbackup/internal/config"
	"tarbackup/internal/deps"
	"tarbackup/internal/preflight"
)

// verdict is the outcome shown beside one checked name.
type verdict int

const (
	verdictPass verdict = iota
	verdictWarn
	verdictFail
)

func (v verdict) String() string {
	switch v {
	case verdictPass:
		return "ok"
	case verdictWarn:
		return "warn"
	default:
		return "FAIL"
	}
}

func (v verdict) color() string {
	switch v {
	case verdictPass:
		return "\x1b[32m"
	case verdictWarn:
		return "\x1b[33m"
	default:
		return "\x1b[31m"
	}
}

const checkNameWidth = 28

// checkPrinter writes the check report and counts failed checks. Warnings
// never count.
type checkPrinter struct {
	out      io.Writer
	colorize bool
	failures int
}

func newCheckPrinter(out io.Writer) *checkPrinter {
	return &checkPrinter{out: out, colorize: isTerminal(out)}
}

func (p *checkPrinter) section(title string) {
	fmt.Fprintf(p.out, "%s\n%s\n", title, strings.Repeat("=", len(title)))
}

func (p *checkPrinter) line(name string, v verdict, detail string) {
	if v == verdictFail {
		p.failures++
	}
	tag := fmt.Sprintf("%-4s", v)
	if p.colorize {
		tag = v.color() + tag + "\x1b[0m"
	}
	fmt.Fprintf(p.out, "  %s  %-*s %s\n", tag, checkNameWidth, name, detail)
}

func (p *checkPrinter) executable(status deps.Status) {
	switch {
	case status.Available:
		p.line(status.Name, verdictPass, status.Command)
	case status.Optional:
		p.line(status.Name, verdictWarn, executableDetail(status))
	default:
		p.line(status.Name, verdictFail, executableDetail(status))
	}
}

func executableDetail(status deps.Status) string {
	if detail := strings.TrimSpace(status.Detail); detail != "" {
		return detail
	}
	return "not available"
}

func (p *checkPrinter) path(result preflight.Result) {
	v := verdictPass
	if !result.Passed {
		v = verdictFail
	}
	p.line(result.Name, v, result.Detail)
}

// rejected reports an item that validation dropped. The rest of the run still
// goes ahead, so this is only a warning.
func (p *checkPrinter) rejected(issue config.ItemIssue) {
	name := issue.Name
	if name == "" {
		name = fmt.Sprintf("backup_list[%d]", issue.Index)
	}
	p.line(name, verdictWarn, issue.Reason)
}

func isTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
