// Package logging configures the process wide logger. Records carry
// seconds elapsed since configuration rather than wall clock time,
// which keeps traces comparable across runs.
package logging

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

type elapsedFormatter struct {
	epoch time.Time
}

func (f *elapsedFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	elapsed := entry.Time.Sub(f.epoch).Seconds()
	line := fmt.Sprintf("%012.2f [%s] %s", elapsed, entry.Level, entry.Message)

	for _, key := range sortedKeys(entry.Data) {
		line += fmt.Sprintf(" %s=%v", key, entry.Data[key])
	}
	return append([]byte(line), '\n'), nil
}

func sortedKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Configure installs the elapsed time formatter on the standard logger
// and raises the level to debug when asked to, or when the DEBUG
// environment variable is set.
func Configure(debug bool) {
	logrus.SetFormatter(&elapsedFormatter{epoch: time.Now()})
	logrus.SetOutput(os.Stderr)

	if _, ok := os.LookupEnv("DEBUG"); ok || debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
