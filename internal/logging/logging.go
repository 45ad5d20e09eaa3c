package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// AppName names the root logger
const AppName = "delimit"

// Levels accepted by Config.Level
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

// Config selects console verbosity and an optional log file
type Config struct {
	Level string // none, normal or debug
	File  string // optional log file, written at debug level
	Mode  string // append or overwrite
}

// Validate checks the level and mode values
func (c Config) Validate() error {
	switch c.Level {
	case "", LevelNone, LevelNormal, LevelDebug:
	default:
		return fmt.Errorf("invalid log level %q (want none, normal or debug)", c.Level)
	}
	switch c.Mode {
	case "", "append", "overwrite":
	default:
		return fmt.Errorf("invalid log mode %q (want append or overwrite)", c.Mode)
	}
	return nil
}

// New returns the program logger. Console output goes to stdout below
// error level and to stderr from error level up.
func New(conf Config) (*zap.Logger, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	consoleCoreLP, consoleCoreHP := consoleCores(conf.Level)

	fileCore := zapcore.NewNopCore()
	if conf.File != "" {
		f, err := openLogFile(conf.File, conf.Mode)
		if err != nil {
			return nil, fmt.Errorf("unable to access log file (%s): %w", conf.File, err)
		}
		fileEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		fileCore = zapcore.NewCore(fileEncoder, zapcore.Lock(f), zap.NewAtomicLevelAt(zap.DebugLevel))
	}

	log := zap.New(zapcore.NewTee(consoleCoreHP, consoleCoreLP, fileCore), zap.AddCaller())
	return log.Named(AppName), nil
}

func consoleCores(level string) (lp, hp zapcore.Core) {
	var minLevel zapcore.Level
	switch level {
	case LevelNormal, "":
		minLevel = zapcore.InfoLevel
	case LevelDebug:
		minLevel = zapcore.DebugLevel
	default:
		return zapcore.NewNopCore(), zapcore.NewNopCore()
	}

	lp = zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig(os.Stdout)), zapcore.Lock(os.Stdout),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return minLevel <= lvl && lvl < zapcore.ErrorLevel
		}))
	hp = zapcore.NewCore(consoleEnc{zapcore.NewConsoleEncoder(encoderConfig(os.Stderr))}, zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel
		}))
	return lp, hp
}

func encoderConfig(stream *os.File) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if term.IsTerminal(int(stream.Fd())) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return ec
}

func openLogFile(name, mode string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return nil, err
	}
	flags := os.O_CREATE | os.O_WRONLY
	if mode == "append" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(name, flags, 0644)
}

// When logging errors to console do not output the verbose message.

type consoleEnc struct {
	zapcore.Encoder
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	newFields := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok {
				f.Interface = errors.New(e.Error())
			}
		}
		newFields = append(newFields, f)
	}
	return c.Encoder.EncodeEntry(ent, newFields)
}
