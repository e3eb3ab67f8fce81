// Package zaplog writes launch argument resolution events to a zap logger.
package zaplog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	launchargs "github.com/goliatone/go-launchargs"
)

// Logger implements launchargs.ResolutionLogger on top of *zap.Logger.
// Successful resolutions log at debug, failures at error.
type Logger struct {
	logger *zap.Logger
}

var _ launchargs.ResolutionLogger = (*Logger)(nil)

// New wraps logger. A nil logger discards everything.
func New(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("launchargs")}
}

// LogResolution implements launchargs.ResolutionLogger.
func (l *Logger) LogResolution(event launchargs.ResolutionLogEvent) {
	fields := []zap.Field{
		zap.String("launch_id", event.LaunchID),
		zap.String("app", event.App),
		zap.Stringer("platform", event.Platform),
		zap.Bool("new_instance", event.NewInstance),
		zap.Duration("duration", event.Duration),
	}
	if len(event.Keys) > 0 {
		fields = append(fields, zap.Strings("keys", event.Keys))
	}
	if len(event.Filtered) > 0 {
		fields = append(fields, zap.Strings("filtered", event.Filtered))
	}
	if len(event.Deleted) > 0 {
		fields = append(fields, zap.Strings("deleted", event.Deleted))
	}

	if event.Err != nil {
		l.logger.Error("launch argument resolution failed", append(fields, zap.Error(event.Err))...)
		return
	}
	if len(event.Filtered) > 0 {
		l.logger.Info("reserved launch arguments dropped", fields...)
	}
	l.logger.Debug("launch arguments resolved", fields...)
}

// NewCLILogger builds a production console logger at level, as used by the
// launchargs command.
func NewCLILogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parsed)
	config.Encoding = "console"
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config.Build()
}
