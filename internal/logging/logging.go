package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// structured logger shared by the CLI commands
type Logger struct {
	*zap.SugaredLogger
}

// rotation settings for the optional log file
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func NewLogger(verbose bool) *Logger {
	return &Logger{zap.New(consoleCore(verbose)).Sugar()}
}

// console logger that also writes JSON records to a rotating file
func NewLoggerWithFile(verbose bool, opts FileOptions) *Logger {
	if opts.Path == "" {
		return NewLogger(verbose)
	}

	writer := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(writer),
		zapcore.DebugLevel,
	)

	return &Logger{
		zap.New(zapcore.NewTee(consoleCore(verbose), fileCore)).Sugar(),
	}
}

// no-op logger for tests and library callers
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

func consoleCore(verbose bool) zapcore.Core {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !verbose {
		encCfg.CallerKey = ""
	}

	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
}
