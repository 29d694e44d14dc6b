package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/2beens/wellnesscoach/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerSetupParams struct {
	LogFileName      string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
	// the terminal client and the MCP stdio server own stdout
	StdoutReserved bool
}

// Setup configures the global logrus logger. The returned func flushes
// buffered sentry events and should run before the process exits.
func Setup(params LoggerSetupParams) (flush func()) {
	flush = func() {}
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))
	logrus.SetOutput(output(params))

	if params.SentryEnabled {
		err := sentry.Init(sentry.ClientOptions{
			Environment:      params.Environment,
			Dsn:              params.SentryDSN,
			TracesSampleRate: 1.0,
			ServerName:       params.SentryServerName,
		})
		if err != nil {
			logrus.Errorf("sentry.Init: %s", err)
			return flush
		}

		logrus.AddHook(NewSentryHook([]logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		}))
		logrus.Infof("sentry set up for %s", params.SentryServerName)
		flush = func() {
			sentry.Flush(2 * time.Second)
		}
	}
	return flush
}

func output(params LoggerSetupParams) io.Writer {
	if params.LogFileName == "" {
		if params.StdoutReserved {
			return io.Discard
		}
		return os.Stdout
	}

	logFileName := params.LogFileName
	if !strings.HasSuffix(logFileName, ".log") {
		logFileName += ".log"
	}
	fileLogger := &lumberjack.Logger{
		Filename:  logFileName,
		MaxSize:   20, // megabytes
		LocalTime: false,
		Compress:  true,
		MaxAge:    30, // days
	}

	if params.LogToStdout && !params.StdoutReserved {
		return pkg.NewCombinedWriter(os.Stdout, fileLogger)
	}
	return fileLogger
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "info":
		return logrus.InfoLevel
	case "trace":
		return logrus.TraceLevel
	case "warn", "warning":
		return logrus.WarnLevel
	default:
		return logrus.TraceLevel
	}
}
