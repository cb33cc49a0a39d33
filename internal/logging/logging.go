package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/flakeradar/flakeradar/internal/constants"
)

// logFileWriter holds the log file writer for cleanup during shutdown.
var logFileWriter io.WriteCloser //nolint:gochecknoglobals // needed for cleanup

// zerologConfigOnce ensures zerolog global settings are configured exactly once.
var zerologConfigOnce sync.Once //nolint:gochecknoglobals // one-time configuration

// zerologGlobalMu protects concurrent writes to the zerolog global logger.
var zerologGlobalMu sync.Mutex //nolint:gochecknoglobals // protects zerolog global

// configureZerologGlobals sets zerolog global field names. Safe for
// concurrent use; only the first call takes effect.
func configureZerologGlobals() {
	zerologConfigOnce.Do(func() {
		zerolog.TimestampFieldName = "ts"
		zerolog.MessageFieldName = "event"
	})
}

// InitLogger creates and configures a zerolog.Logger based on verbosity
// flags.
//
// Log levels: verbose selects Debug, quiet selects Warn, otherwise Info.
// Output goes to stderr as console text on a TTY (unless NO_COLOR is set)
// or as JSON otherwise, and additionally to a rotating file under
// ~/.flakeradar/logs with credential redaction applied. File setup failure
// is non-fatal: logging continues console-only.
func InitLogger(verbose, quiet bool) zerolog.Logger {
	configureZerologGlobals()

	writer := selectOutput()
	if fileWriter, err := createLogFileWriter(); err == nil {
		logFileWriter = fileWriter
		writer = zerolog.MultiLevelWriter(writer, fileWriter)
	}

	logger := zerolog.New(writer).
		Level(selectLevel(verbose, quiet)).
		With().Timestamp().Str("app", constants.AppName).Logger()
	setGlobalLogger(logger)
	return logger
}

// InitLoggerWithWriter creates a logger over a custom writer. Primarily
// intended for testing.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	configureZerologGlobals()

	logger := zerolog.New(w).
		Level(selectLevel(verbose, quiet)).
		With().Timestamp().Str("app", constants.AppName).Logger()
	setGlobalLogger(logger)
	return logger
}

// CloseLogFile closes the log file writer if one was opened. Called during
// application shutdown.
func CloseLogFile() {
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

// setGlobalLogger aligns the zerolog package-global logger with ours so
// stray log.Info() calls share the same formatting.
func setGlobalLogger(logger zerolog.Logger) {
	zerologGlobalMu.Lock()
	defer zerologGlobalMu.Unlock()
	log.Logger = logger
}

// selectLevel maps verbosity flags onto a zerolog level.
func selectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// selectOutput returns a console writer on an interactive stderr without
// NO_COLOR, JSON to stderr otherwise.
func selectOutput() io.Writer {
	if fi, err := os.Stderr.Stat(); err == nil &&
		fi.Mode()&os.ModeCharDevice != 0 && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

// filteringWriteCloser wraps a WriteCloser with credential redaction so it
// can replace the raw file writer.
type filteringWriteCloser struct {
	filter *FilteringWriter
	closer io.Closer
}

func (fwc *filteringWriteCloser) Write(p []byte) (n int, err error) {
	return fwc.filter.Write(p)
}

func (fwc *filteringWriteCloser) Close() error {
	return fwc.closer.Close()
}

// createLogFileWriter creates the rotating log file writer, wrapped with
// redaction so pre-signed URLs never land on disk.
func createLogFileWriter() (io.WriteCloser, error) {
	home, err := flakeradarHome()
	if err != nil {
		return nil, err
	}

	logDir := filepath.Join(home, constants.LogsDir)
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.LogFileName),
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   true,
	}

	return &filteringWriteCloser{
		filter: NewFilteringWriter(lj),
		closer: lj,
	}, nil
}

// flakeradarHome returns $FLAKERADAR_HOME, defaulting to ~/.flakeradar.
func flakeradarHome() (string, error) {
	if home := os.Getenv(constants.EnvPrefix + "_HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, constants.FlakeradarHome), nil
}
