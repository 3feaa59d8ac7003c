package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const SystemName = "dashboard-service"

// Logger je globalna instanca Logrusa. Do InitLogger poziva pise na stderr.
var Logger = newLogger()
var once sync.Once

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&CustomFormatter{SystemName: SystemName})
	return l
}

// CustomFormatter writes one "Date: ..., Event ID: ..., Message: ..." line
// per entry.
type CustomFormatter struct {
	SystemName string
	Location   *time.Location
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	location := f.Location
	if location == nil {
		location = timezoneCEST()
	}
	localTime := entry.Time.In(location)

	fmt.Fprintf(b, "Date: %s, Time: %s, ", localTime.Format("2006-01-02"), localTime.Format("15:04:05"))
	fmt.Fprintf(b, "Event Source: %s, ", f.SystemName)
	fmt.Fprintf(b, "Event Type: %s, ", strings.ToUpper(entry.Level.String()))
	fmt.Fprintf(b, "Event ID: %s, ", uuid.New().String())
	fmt.Fprintf(b, "Message: %s", entry.Message)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, ", %s: %v", k, entry.Data[k])
		}
	}

	if entry.HasCaller() {
		fmt.Fprintf(b, ", Location: %s:%d in %s", filepath.Base(entry.Caller.File), entry.Caller.Line, entry.Caller.Function)
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func timezoneCEST() *time.Location {
	return time.FixedZone("CEST", 2*60*60)
}

// InitLogger sends the global logger to stderr and to a rotating file. An
// empty logFile keeps stderr only.
func InitLogger(logFile, level string) error {
	var initErr error
	once.Do(func() {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			initErr = fmt.Errorf("invalid log level %q: %w", level, err)
			return
		}

		var out io.Writer = os.Stderr
		if logFile != "" {
			if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
				initErr = fmt.Errorf("failed to create log directory: %w", err)
				return
			}
			out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			})
		}

		Logger.SetOutput(out)
		Logger.SetFormatter(&CustomFormatter{SystemName: SystemName})
		Logger.SetLevel(lvl)
		Logger.SetReportCaller(true)

		Logger.Infof("Event ID: LOGGER_INITIALIZED, Description: Logger initialized for %s, output to: %s", SystemName, logFile)
	})
	return initErr
}
