package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"tarbackup/internal/config"
	"tarbackup/internal/deps"
	"tarbackup/internal/preflight"
)

func TestCheckPrinterExecutables(t *testing.T) {
	var buf bytes.Buffer
	printer := newCheckPrinter(&buf)

	printer.executable(deps.Status{Name: "tar", Available: true, Command: "/usr/bin/tar"})
	printer.executable(deps.Status{Name: "db pre_action", Detail: `binary "pg_dump" not found`})
	printer.executable(deps.Status{Name: "extra", Optional: true})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", lines)
	}
	if !strings.HasPrefix(lines[0], "  ok  ") || !strings.HasSuffix(lines[0], "/usr/bin/tar") {
		t.Fatalf("unexpected ready line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  FAIL") || !strings.HasSuffix(lines[1], `binary "pg_dump" not found`) {
		t.Fatalf("unexpected missing line %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "  warn") || !strings.HasSuffix(lines[2], "not available") {
		t.Fatalf("unexpected optional line %q", lines[2])
	}
	if printer.failures != 1 {
		t.Fatalf("only the required executable should fail, got %d", printer.failures)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("non-terminal output must not be coloured: %q", buf.String())
	}
}

func TestCheckPrinterPathsAndRejected(t *testing.T) {
	var buf bytes.Buffer
	printer := newCheckPrinter(&buf)

	printer.path(preflight.Result{Name: "Log file", Passed: true, Detail: "/var/log/x (write ok)"})
	printer.path(preflight.Result{Name: "docs source", Detail: "/src (error: does not exist)"})
	printer.rejected(config.ItemIssue{Index: 3, Reason: `missing required key "name"`})

	out := buf.String()
	for _, want := range []string{"ok    Log file", "FAIL  docs source", "warn  backup_list[3]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if printer.failures != 1 {
		t.Fatalf("expected 1 failure, got %d", printer.failures)
	}
}

func TestCheckPrinterColour(t *testing.T) {
	var buf bytes.Buffer
	printer := &checkPrinter{out: &buf, colorize: true}
	printer.line("tar", verdictPass, "/usr/bin/tar")
	if !strings.HasPrefix(buf.String(), "  \x1b[32mok  \x1b[0m") {
		t.Fatalf("expected green verdict, got %q", buf.String())
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeConfig(t, env.docsItem())

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Executables\n===========")
	requireContains(t, out, "docs destination")

	env.tarStub = env.tarStub + "-missing"
	env.writeConfig(t, env.docsItem())
	out, _, err = runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing tar to fail the check")
	}
	requireContains(t, out, "FAIL")
}

func TestIsTerminalNonFile(t *testing.T) {
	if isTerminal(io.Discard) {
		t.Fatal("expected non-file writer to disable colour")
	}
}
