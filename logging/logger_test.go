package logging

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestCustomFormatter(t *testing.T) {
	f := &CustomFormatter{SystemName: "dashboard-service", Location: time.UTC}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "Event ID: TASK_LIST_FAILED, Description: store down",
		Data:    logrus.Fields{"user_id": "u1", "collection": "tasks"},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	line := string(out)

	pattern := `^Date: 2025-03-01, Time: 09:30:00, Event Source: dashboard-service, Event Type: WARNING, Event ID: [0-9a-f-]{36}, Message: Event ID: TASK_LIST_FAILED, Description: store down, collection: tasks, user_id: u1\n$`
	if !regexp.MustCompile(pattern).MatchString(line) {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestCustomFormatterDefaultZone(t *testing.T) {
	f := &CustomFormatter{SystemName: "x"}
	entry := &logrus.Entry{
		Logger: logrus.New(),
		Time:   time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC),
		Level:  logrus.InfoLevel,
	}
	out, _ := f.Format(entry)
	if !strings.HasPrefix(string(out), "Date: 2025-03-02, Time: 01:00:00,") {
		t.Fatalf("expected CEST timestamps, got %q", out)
	}
}
