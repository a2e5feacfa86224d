package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteScript writes an executable shell script to path.
func WriteScript(t testing.TB, path, body string) {
	t.Helper()

	WriteFile(t, path, "#!/bin/sh\n"+body+"\n")
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("chmod %s: %v", path, err)
	}
}

// SeedStateFile places an incremental state file for item under destPath,
// as a previous full run would have left it.
func SeedStateFile(t testing.TB, destPath, item, date string) string {
	t.Helper()

	path := filepath.Join(destPath, item, item+"-"+date+".snar")
	WriteFile(t, path, "")
	return path
}
