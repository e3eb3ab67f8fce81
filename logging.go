package launchargs

import "time"

// ResolutionLogEvent describes one launch argument resolution.
type ResolutionLogEvent struct {
	LaunchID    string
	App         string
	Platform    Platform
	NewInstance bool
	Keys        []string
	Filtered    []string
	Deleted     []string
	Duration    time.Duration
	Err         error
}

// ResolutionLogger records resolution events.
type ResolutionLogger interface {
	LogResolution(ResolutionLogEvent)
}

// ResolutionLoggerFunc adapts a function to ResolutionLogger.
type ResolutionLoggerFunc func(ResolutionLogEvent)

// LogResolution implements ResolutionLogger.
func (f ResolutionLoggerFunc) LogResolution(event ResolutionLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopResolutionLogger struct{}

func (noopResolutionLogger) LogResolution(ResolutionLogEvent) {}

type multiResolutionLogger []ResolutionLogger

func (m multiResolutionLogger) LogResolution(event ResolutionLogEvent) {
	for _, logger := range m {
		logger.LogResolution(event)
	}
}

// MultiResolutionLogger fans events out to every non-nil logger.
func MultiResolutionLogger(loggers ...ResolutionLogger) ResolutionLogger {
	out := make(multiResolutionLogger, 0, len(loggers))
	for _, logger := range loggers {
		if logger != nil {
			out = append(out, logger)
		}
	}
	switch len(out) {
	case 0:
		return noopResolutionLogger{}
	case 1:
		return out[0]
	default:
		return out
	}
}
