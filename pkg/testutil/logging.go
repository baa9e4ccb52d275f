package testutil

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// Logs are discarded unless tests run with -v, but every level is enabled so
// hooks still observe debug and trace entries.
func init() {
	logrus.SetLevel(logrus.TraceLevel)

	for _, arg := range os.Args {
		if arg == "-test.v" || strings.HasPrefix(arg, "-test.v=true") {
			return
		}
	}
	logrus.StandardLogger().Out = io.Discard
}

func DisableLogging() (reset func()) {
	originalLogOutput := logrus.StandardLogger().Out
	logrus.StandardLogger().Out = io.Discard
	return func() {
		logrus.StandardLogger().Out = originalLogOutput
	}
}

// CaptureLogs records entries written to the standard logger for the rest of
// the test.
func CaptureLogs(t *testing.T) *test.Hook {
	hook := test.NewLocal(logrus.StandardLogger())
	t.Cleanup(func() {
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	})
	return hook
}

// FindLogEntry returns the last captured entry with the given message.
func FindLogEntry(hook *test.Hook, message string) *logrus.Entry {
	entries := hook.AllEntries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Message == message {
			return entries[i]
		}
	}
	return nil
}
