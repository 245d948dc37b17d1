// Package adapters provides the concrete, injectable implementations
// of the engine's three external contracts (orchestrator.Logger,
// orchestrator.Clock, orchestrator.ResultSink) plus the raw-socket
// acquire/release helper the CLI layer uses to hand sockets down into
// internal/core. None of this is imported by internal/core itself —
// the core only ever sees the interfaces it declares.
package adapters

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"netrecon/internal/core/orchestrator"
)

// LogConfig mirrors the handful of knobs spec.md §6 exposes for
// logging: level, format, where it goes, and rotation policy when it
// goes to a file.
type LogConfig struct {
	Level      string
	Format     string // "json" or "text"
	Output     string // "stdout", "stderr", or "file"
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
	Caller     bool
}

// LogrusSink is an orchestrator.Logger backed by logrus + lumberjack
// rotation. Unlike the teacher's LoggerManager there is no package
// level instance: every caller constructs and injects its own.
type LogrusSink struct {
	logger *logrus.Logger
}

// NewLogrusSink builds a sink from cfg. Returns an error for an
// unrecognized format/output rather than silently defaulting, since a
// misconfigured sink should fail the scan at startup, not mid-run.
func NewLogrusSink(cfg LogConfig) (*LogrusSink, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if err := applyFormatter(logger, cfg); err != nil {
		return nil, fmt.Errorf("log formatter: %w", err)
	}
	if err := applyOutput(logger, cfg); err != nil {
		return nil, fmt.Errorf("log output: %w", err)
	}
	logger.SetReportCaller(cfg.Caller)

	return &LogrusSink{logger: logger}, nil
}

func applyFormatter(logger *logrus.Logger, cfg LogConfig) error {
	const timestampFormat = "2006-01-02 15:04:05.000"
	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		})
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Format)
	}
	return nil
}

func applyOutput(logger *logrus.Logger, cfg LogConfig) error {
	switch strings.ToLower(cfg.Output) {
	case "stdout", "":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	case "file":
		if cfg.FilePath == "" {
			return fmt.Errorf("file path is required when output is file")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		rotated := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		if strings.EqualFold(cfg.Level, "debug") {
			logger.SetOutput(io.MultiWriter(os.Stdout, rotated))
		} else {
			logger.SetOutput(rotated)
		}
	default:
		return fmt.Errorf("unsupported log output: %s", cfg.Output)
	}
	return nil
}

// Log implements orchestrator.Logger.
func (s *LogrusSink) Log(level orchestrator.LogLevel, msg string, fields map[string]interface{}) {
	entry := s.logger.WithFields(logrus.Fields(fields))
	switch level {
	case orchestrator.LevelTrace:
		entry.Trace(msg)
	case orchestrator.LevelDebug:
		entry.Debug(msg)
	case orchestrator.LevelInfo:
		entry.Info(msg)
	case orchestrator.LevelWarn:
		entry.Warn(msg)
	case orchestrator.LevelError:
		entry.Error(msg)
	}
}
