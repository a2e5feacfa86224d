package config

const (
	defaultConfigPath   = "~/.config/tarbackup/config.toml"
	defaultLogFile      = "~/.local/share/tarbackup/logs/tarbackup.log"
	defaultLockFile     = "~/.local/share/tarbackup/backup.lock"
	defaultHistoryPath  = "~/.local/share/tarbackup/history.db"
	defaultTarBinary    = "tar"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultExitPolicy   = ExitPolicyLenient
	defaultMissingState = MissingStateError
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		LogFile:      defaultLogFile,
		LockFile:     defaultLockFile,
		TarBinary:    defaultTarBinary,
		ExitPolicy:   defaultExitPolicy,
		MissingState: defaultMissingState,
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
	}
}
