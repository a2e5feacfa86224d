package preflight

import (
	"fmt"

	"tarbackup/internal/config"
	"tarbackup/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the path and lock checks for every enabled item.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckCreatable("Log file", cfg.LogFile))
	results = append(results, CheckLock(cfg.LockFile))
	if cfg.History.Enabled {
		results = append(results, CheckCreatable("History database", cfg.History.Path))
	}

	for _, item := range cfg.Items {
		if !item.IsEnabled() || item.HookOnly() {
			continue
		}
		results = append(results, CheckReadable(fmt.Sprintf("%s source", item.Name), item.SourcePath))
		results = append(results, CheckCreatable(fmt.Sprintf("%s destination", item.Name), item.DestPath))
	}
	return results
}

// CheckSystemDeps evaluates the archiver and every hook executable the
// configuration would run.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	if cfg == nil {
		return nil
	}
	requirements := []deps.Requirement{
		{
			Name:        "tar",
			Command:     cfg.TarBinary,
			Description: "Required for archiving",
		},
	}
	requirements = appendHook(requirements, "pre_script_action", cfg.PreScriptAction)
	requirements = appendHook(requirements, "post_script_action", cfg.PostScriptAction)
	for _, item := range cfg.Items {
		if !item.IsEnabled() {
			continue
		}
		requirements = appendHook(requirements, item.Name+" pre_action", item.PreAction)
		requirements = appendHook(requirements, item.Name+" post_action", item.PostAction)
	}
	return deps.CheckBinaries(requirements)
}

func appendHook(requirements []deps.Requirement, name, line string) []deps.Requirement {
	if line == "" {
		return requirements
	}
	return append(requirements, deps.Requirement{
		Name:        name,
		Command:     hookExecutable(line),
		Description: "Hook command",
	})
}
