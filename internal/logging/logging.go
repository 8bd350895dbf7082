package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mau.fi/zeroconfig"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"
)

// LevelEnv overrides the default log level.
const LevelEnv = "LOG_LEVEL"

// Options select where and how much the tool logs.
type Options struct {
	// Level is a zerolog level name; empty falls back to $LOG_LEVEL, then info.
	Level string
	// File, when set, receives JSON logs rotated by size.
	File string
	// ConfigPath points at a zeroconfig YAML file and replaces the other options.
	ConfigPath string
	// Console is where human-readable logs go. Defaults to stderr.
	Console io.Writer
}

// Setup installs the global logger. The returned function flushes and
// closes any log file.
func Setup(opts Options) (func(), error) {
	if opts.ConfigPath != "" {
		return func() {}, loadConfig(opts.ConfigPath)
	}

	level, err := parseLevel(opts.Level)
	if err != nil {
		return func() {}, err
	}
	zerolog.SetGlobalLevel(level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}}

	closer := func() {}
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		writers = append(writers, rotating)
		closer = func() { _ = rotating.Close() }
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	return closer, nil
}

func parseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		name = os.Getenv(LevelEnv)
	}
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

func loadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("log config %s is not readable: %w", path, err)
	}
	var cfg zeroconfig.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("log config %s is not valid yaml: %w", path, err)
	}
	logger, err := cfg.Compile()
	if err != nil {
		return fmt.Errorf("log config %s is not valid for zerolog, see go.mau.fi/zeroconfig documentation: %w", path, err)
	}
	log.Logger = *logger
	return nil
}
