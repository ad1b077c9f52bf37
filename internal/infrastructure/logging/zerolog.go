package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var zeroLogLevels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
	"fatal": zerolog.FatalLevel,
}

type zeroLogger struct {
	cfg    *LoggerConfig
	logger zerolog.Logger
}

func newZeroLogger(cfg *LoggerConfig) *zeroLogger {
	l := &zeroLogger{cfg: cfg}
	l.Init()
	return l
}

func (l *zeroLogger) getLogLevel() zerolog.Level {
	level, ok := zeroLogLevels[l.cfg.Level]
	if !ok {
		return zerolog.InfoLevel
	}
	return level
}

func (l *zeroLogger) Init() {
	var out io.Writer = os.Stdout
	if l.cfg.Mirror != nil {
		out = io.MultiWriter(os.Stdout, l.cfg.Mirror)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	l.logger = zerolog.New(out).
		With().
		Timestamp().
		Str(string(AppName), "storelink-relay").
		Str(string(LoggerName), "zerolog").
		Logger().
		Level(l.getLogLevel())
}

func (l *zeroLogger) Debug(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.logger.Debug().
		Fields(logParamsToZeroParams(extra)).
		Str("Category", string(cat)).
		Str("SubCategory", string(sub)).
		Msg(msg)
}

func (l *zeroLogger) Debugf(template string, args ...any) {
	l.logger.Debug().Msgf(template, args...)
}

func (l *zeroLogger) Info(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.logger.Info().
		Fields(logParamsToZeroParams(extra)).
		Str("Category", string(cat)).
		Str("SubCategory", string(sub)).
		Msg(msg)
}

func (l *zeroLogger) Infof(template string, args ...any) {
	l.logger.Info().Msgf(template, args...)
}

func (l *zeroLogger) Warn(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.logger.Warn().
		Fields(logParamsToZeroParams(extra)).
		Str("Category", string(cat)).
		Str("SubCategory", string(sub)).
		Msg(msg)
}

func (l *zeroLogger) Warnf(template string, args ...any) {
	l.logger.Warn().Msgf(template, args...)
}

func (l *zeroLogger) Error(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.logger.Error().
		Fields(logParamsToZeroParams(extra)).
		Str("Category", string(cat)).
		Str("SubCategory", string(sub)).
		Msg(msg)
}

func (l *zeroLogger) Errorf(template string, args ...any) {
	l.logger.Error().Msgf(template, args...)
}

func (l *zeroLogger) Fatal(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.logger.Fatal().
		Fields(logParamsToZeroParams(extra)).
		Str("Category", string(cat)).
		Str("SubCategory", string(sub)).
		Msg(msg)
}

func (l *zeroLogger) Fatalf(template string, args ...any) {
	l.logger.Fatal().Msgf(template, args...)
}
