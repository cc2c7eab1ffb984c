package log

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Named loggers on top of one process wide zap logger. Each SimpleLogWrapper carries a header that shows up as
// the zap logger name, so a line printed by GetLog("ProjectPlan").WarnF(...) is tagged with ProjectPlan without
// the caller repeating it. Nothing is printed until InitLogger is called.
// Usage:
// ```golang
//	InitLogger("./log.log", false)
//	defer CloseLog()
//	planLog := GetLog("ProjectPlan")
//	planLog.InfoF("%d groups", n)
// ```

var (
	globalLogLock      sync.Mutex
	globalLogger       = map[string]SimpleLogWrapper{}
	initialized        bool
	ErrReInitializeLog = errors.New("log have been initialized")
)

type SimpleLogWrapper struct {
	header string
}

func GetLog(logName string) SimpleLogWrapper {
	globalLogLock.Lock()
	defer globalLogLock.Unlock()
	_, ok := globalLogger[logName]
	if !ok {
		globalLogger[logName] = SimpleLogWrapper{logName}
	}
	return globalLogger[logName]
}

// InitLogger installs the process logger. Logs go to savePath, or to stderr when savePath is empty. Debug lines
// are printed only when debug is set.
func InitLogger(savePath string, debug bool) error {
	globalLogLock.Lock()
	defer globalLogLock.Unlock()
	if initialized {
		return ErrReInitializeLog
	}
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	if savePath != "" {
		config.OutputPaths = []string{savePath}
	}
	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		return err
	}
	_ = zap.ReplaceGlobals(logger)
	initialized = true
	return nil
}

// CloseLog flushes buffered log lines.
func CloseLog() error {
	return zap.L().Sync()
}

func (log SimpleLogWrapper) sugar() *zap.SugaredLogger {
	return zap.S().Named(log.header)
}

func (log SimpleLogWrapper) InfoF(format string, params ...interface{}) {
	log.sugar().Infof(format, params...)
}

func (log SimpleLogWrapper) DebugF(format string, params ...interface{}) {
	log.sugar().Debugf(format, params...)
}

func (log SimpleLogWrapper) WarnF(format string, params ...interface{}) {
	log.sugar().Warnf(format, params...)
}

func (log SimpleLogWrapper) ErrorF(format string, params ...interface{}) {
	log.sugar().Errorf(format, params...)
}
