package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"tarbackup/internal/cmdline"
	"tarbackup/internal/config"
)

// DateLayout formats the run date embedded in archive and state file names.
const DateLayout = "2006-01-02"

const (
	// baseFlags requests gzip compression, creation, and absolute path preservation.
	baseFlags = "-zcP"
	stateFlag = "--listed-incremental"
	stateExt  = "snar"
)

// ErrNoStateFile reports an incremental build for an item that has never had
// a full backup.
var ErrNoStateFile = errors.New("no incremental state file found")

// Mode selects full or incremental archiving for a whole run.
type Mode int

const (
	Incremental Mode = iota
	Full
)

func (m Mode) String() string {
	if m == Full {
		return "full"
	}
	return "incremental"
}

// ParseMode maps a mode name back to its Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "full":
		return Full, nil
	case "incremental", "":
		return Incremental, nil
	default:
		return Incremental, fmt.Errorf("unknown archive mode %q", value)
	}
}

// Plan describes the archive step built for one item.
type Plan struct {
	Command   cmdline.Command
	Mode      Mode
	DestDir   string
	Archive   string
	StateFile string
}

// Options configures the builder.
type Options struct {
	// TarBinary is the archiver executable; "tar" when empty.
	TarBinary string
}

// Build produces the archive step for item. It returns ok=false without an
// error for hook-only items. The item's destination directory is created when
// missing. In incremental mode ErrNoStateFile is returned when the directory
// holds no .snar file.
func Build(item config.Item, mode Mode, date time.Time, opts Options) (Plan, bool, error) {
	if item.HookOnly() {
		return Plan{}, false, nil
	}
	args, err := tarFlags(item.TarOptions)
	if err != nil {
		return Plan{}, false, fmt.Errorf("item %s: tar_opts: %w", item.Name, err)
	}

	destDir := filepath.Join(item.DestPath, item.Name)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Plan{}, false, fmt.Errorf("create destination %s: %w", destDir, err)
	}

	stamp := date.Format(DateLayout)
	plan := Plan{Mode: mode, DestDir: destDir}

	switch mode {
	case Full:
		plan.Archive = filepath.Join(destDir, fmt.Sprintf("full-%s-%s.tar.gz", item.Name, stamp))
		plan.StateFile = filepath.Join(destDir, fmt.Sprintf("%s-%s.snar", item.Name, stamp))
	default:
		stateFile, err := FindStateFile(destDir)
		if err != nil {
			return Plan{}, false, err
		}
		plan.Archive = filepath.Join(destDir, fmt.Sprintf("i.%s-%s.tar.gz", item.Name, stamp))
		plan.StateFile = stateFile
	}

	tarBinary := strings.TrimSpace(opts.TarBinary)
	if tarBinary == "" {
		tarBinary = "tar"
	}
	args = append(args, stateFlag, plan.StateFile, "-f", plan.Archive, item.SourcePath)
	plan.Command = cmdline.Command{Path: tarBinary, Args: args}
	return plan, true, nil
}

// tarFlags merges extra options into the base flag set. A bare cluster of
// letters such as "v" joins the base cluster; anything else is split with
// shell quoting rules and appended after it.
func tarFlags(extra string) ([]string, error) {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return []string{baseFlags}, nil
	}
	if isLetterCluster(extra) {
		return []string{baseFlags + extra}, nil
	}
	words, err := cmdline.Split(extra)
	if err != nil {
		return nil, err
	}
	return append([]string{baseFlags}, words...), nil
}

func isLetterCluster(value string) bool {
	for _, r := range value {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return value != ""
}

// FindStateFile returns the first file under dir whose name ends in "snar",
// walking in lexical order. With several state files the earliest dated one
// wins, so incrementals keep extending the oldest full backup's snapshot until
// older state files are removed.
func FindStateFile(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), stateExt) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search state file in %s: %w", dir, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w in %s", ErrNoStateFile, dir)
	}
	return found, nil
}
