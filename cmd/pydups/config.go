package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configBaseName   = "pydups"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "PYDUPS"

	formatFlagName        = "format"
	excludeFlagName       = "exclude"
	excludeScriptFlagName = "exclude-script"
	scriptsDirFlagName    = "scripts-dir"
	dbFlagName            = "db"
	keepRunsFlagName      = "keep-runs"
	summaryFlagName       = "summary"
	diffFlagName          = "diff"
	noColorFlagName       = "no-color"
	logFileFlagName       = "log-file"
	verboseFlagName       = "verbose"

	formatKey     = "output.format"
	summaryKey    = "output.summary"
	diffKey       = "output.diff"
	noColorKey    = "output.no_color"
	excludeKey    = "paths.exclude"
	scriptsKey    = "rules.scripts"
	scriptsDirKey = "rules.dir"
	dbKey         = "export.db"
	keepRunsKey   = "export.keep_runs"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultFormat        = "text"
	defaultLogLevel      = "warn"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(formatKey, defaultFormat)
	viper.SetDefault(summaryKey, false)
	viper.SetDefault(diffKey, false)
	viper.SetDefault(noColorKey, false)
	viper.SetDefault(excludeKey, []string{})
	viper.SetDefault(scriptsKey, []string{})
	viper.SetDefault(scriptsDirKey, "")
	viper.SetDefault(dbKey, "")
	viper.SetDefault(keepRunsKey, 0)

	viper.SetDefault(logFilenameKey, "")
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, false)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return
		}
		slog.Warn("ignoring unreadable config", "file", configFileName, "error", err)
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels, e.g. -4 for debug.
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger builds the process logger and installs it as the slog
// default. With a log file it writes through lumberjack; otherwise it writes
// to stderr. verbose forces debug level. The returned func closes the log
// file and is a no-op without one.
func configureLogger(stderr io.Writer, logPath string, verbose bool) (*slog.Logger, func() error) {
	level := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelWarn)
	if verbose {
		level = slog.LevelDebug
	}

	var out io.Writer = stderr
	closeLog := func() error { return nil }
	if strings.TrimSpace(logPath) != "" {
		lj := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    viper.GetInt(logMaxSizeKey),
			MaxBackups: viper.GetInt(logMaxBackupsKey),
			MaxAge:     viper.GetInt(logMaxAgeKey),
			Compress:   viper.GetBool(logCompressKey),
		}
		out, closeLog = lj, lj.Close
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeLog
}
