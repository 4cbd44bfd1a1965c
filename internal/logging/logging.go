// Package logging provides structured JSONL logging for the logstash launcher.
//
// The launcher logs to the console only unless a JSONL file is configured,
// and by default the console shows errors alone. Console output goes to
// stderr: after the exec the launcher's stdout belongs to the agent.
//
// Log Format:
// Each log entry is a single JSON object on its own line:
//
//	{"level":"info","timestamp":"2024-01-15T10:30:00.000Z","service":"logstash-launcher","msg":"launch_exec","path":"/usr/bin/java"}
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ServiceName is attached to every entry.
const ServiceName = "logstash-launcher"

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level for the file core (debug, info, warn, error)
	Level string
	// ConsoleLevel is the minimum log level for the console core
	ConsoleLevel string
	// LogDir is the directory for log files
	LogDir string
	// LogFile is the log filename (not full path)
	LogFile string
	// MaxSizeMB is the maximum size in MB before rotation
	MaxSizeMB int
	// MaxBackups is the number of backup files to keep
	MaxBackups int
	// MaxAgeDays is the maximum age in days to retain logs
	MaxAgeDays int
	// EnableConsole enables console output
	EnableConsole bool
	// EnableFile enables file output
	EnableFile bool
	// ConsoleFormat is the console format (json, plain)
	ConsoleFormat string
	// Console is the console destination; nil means stderr
	Console io.Writer
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:         "info",
		ConsoleLevel:  "error",
		LogDir:        "/var/log/logstash",
		LogFile:       "launcher.jsonl",
		MaxSizeMB:     10,
		MaxBackups:    5,
		MaxAgeDays:    30,
		EnableConsole: true,
		EnableFile:    true,
		ConsoleFormat: "plain",
	}
}

// ConsoleOnly returns cfg with the file core disabled. It is the fallback
// when the log directory is not writable.
func ConsoleOnly(cfg *Config) *Config {
	c := *cfg
	c.EnableFile = false
	c.EnableConsole = true
	return &c
}

var (
	// globalLogger is the package-level logger instance
	globalLogger *zap.Logger
	// globalSugar is the sugared logger for convenience
	globalSugar *zap.SugaredLogger
	// fileLogger writes to the file core alone
	fileLogger *zap.Logger
	// fileWriter holds the rotating file writer for cleanup
	fileWriter *lumberjack.Logger
)

// Setup initializes the global logger with the given configuration.
func Setup(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	consoleLevel := level
	if cfg.ConsoleLevel != "" {
		if l, err := parseLevel(cfg.ConsoleLevel); err == nil {
			consoleLevel = l
		}
	}

	jsonEncoder := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	consoleEncoder := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  zapcore.OmitKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var cores []zapcore.Core
	var fileCore zapcore.Core
	var writer *lumberjack.Logger

	if cfg.EnableFile {
		logPath := filepath.Join(cfg.LogDir, cfg.LogFile)
		if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
			return err
		}
		// lumberjack opens lazily; fail here rather than on the first write.
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			return err
		}
		_ = f.Close()

		writer = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
			LocalTime:  false,
		}

		fileCore = zapcore.NewCore(
			zapcore.NewJSONEncoder(jsonEncoder),
			zapcore.AddSync(writer),
			level,
		)
		cores = append(cores, fileCore)
	}

	if cfg.EnableConsole {
		var encoder zapcore.Encoder
		if cfg.ConsoleFormat == "json" {
			encoder = zapcore.NewJSONEncoder(jsonEncoder)
		} else {
			encoder = zapcore.NewConsoleEncoder(consoleEncoder)
		}

		var out io.Writer = os.Stderr
		if cfg.Console != nil {
			out = cfg.Console
		}

		cores = append(cores, zapcore.NewCore(
			encoder,
			zapcore.AddSync(out),
			consoleLevel,
		))
	}

	// Replace a previous setup only once the new one is known to work.
	_ = Close()
	fileWriter = writer

	hostname, _ := os.Hostname()
	base := []zap.Field{
		zap.String("service", ServiceName),
		zap.String("hostname", hostname),
		zap.Int("pid", os.Getpid()),
	}
	globalLogger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).With(base...)
	globalSugar = globalLogger.Sugar()
	if fileCore != nil {
		fileLogger = zap.New(fileCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).With(base...)
	}

	return nil
}

// parseLevel converts a string level to zapcore.Level.
func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	err := l.UnmarshalText([]byte(strings.ToLower(level)))
	return l, err
}

// L returns the global logger. Until Setup has been called it is a no-op
// logger, so library code never writes to the real log directory by
// accident.
func L() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// File returns a logger that writes to the file core only, or a no-op
// logger when no file is configured. Use it for entries the caller already
// reports on the console some other way.
func File() *zap.Logger {
	if fileLogger == nil {
		return zap.NewNop()
	}
	return fileLogger
}

// S returns the global sugared logger.
func S() *zap.SugaredLogger {
	if globalSugar == nil {
		return zap.NewNop().Sugar()
	}
	return globalSugar
}

// With creates a child logger with additional fields.
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

// Sync flushes any buffered log entries.
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// Close flushes the logger and closes the rotating file, if any.
func Close() error {
	_ = Sync()
	globalLogger = nil
	globalSugar = nil
	fileLogger = nil
	if fileWriter != nil {
		err := fileWriter.Close()
		fileWriter = nil
		return err
	}
	return nil
}

// Field constructors for common log fields

// Path returns a field for file/directory paths.
func Path(path string) zap.Field {
	return zap.String("path", path)
}

// Interpreter returns a field for the interpreter name as configured.
func Interpreter(name string) zap.Field {
	return zap.String("interpreter", name)
}

// Argv returns a field for an argument vector.
func Argv(argv []string) zap.Field {
	return zap.Strings("argv", argv)
}

// Count returns a field for counts/quantities.
func Count(n int) zap.Field {
	return zap.Int("count", n)
}

// Duration returns a field for time durations.
func Duration(d time.Duration) zap.Field {
	return zap.Duration("duration", d)
}

// ErrorCode returns a field for launcher error codes.
func ErrorCode(code string) zap.Field {
	return zap.String("error_code", code)
}

// Check returns a field for preflight check names.
func Check(name string) zap.Field {
	return zap.String("check", name)
}
