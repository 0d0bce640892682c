// Package log prints messages and, after Init, also appends them to
// daily files: regular messages to log/, errors with a callstack to
// errors/ and structured events (see Event) to events/.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

var (
	logFile    *dailyFile
	errorsFile *dailyFile
	eventsFile *dailyFile

	// if true, Verbosef() logs messages
	Verbose bool

	// where messages are printed. nil means os.Stdout
	Output io.Writer
)

type Config struct {
	// log, errors and events are stored in subdirectories of Dir
	Dir string
}

func eventsDir(dir string) string {
	return filepath.Join(dir, "events")
}

// Init starts writing to daily files in config.Dir.
// Files are created on first write.
func Init(config *Config) {
	logFile = newDailyFile(filepath.Join(config.Dir, "log"))
	errorsFile = newDailyFile(filepath.Join(config.Dir, "errors"))
	eventsFile = newDailyFile(eventsDir(config.Dir))
}

// Close flushes and closes daily files. Subsequent messages are only printed.
func Close() {
	for _, f := range []**dailyFile{&logFile, &errorsFile, &eventsFile} {
		if err := (*f).Close(); err != nil {
			fmt.Fprintf(output(), "log.Close: %v\n", err)
		}
		*f = nil
	}
}

func output() io.Writer {
	if Output != nil {
		return Output
	}
	return os.Stdout
}

func timestamped(s string) []byte {
	return []byte(time.Now().UTC().Format("15:04:05.000 ") + s)
}

func Logf(format string, args ...any) {
	s := format
	if len(args) > 0 {
		s = fmt.Sprintf(format, args...)
	}
	fmt.Fprint(output(), s)
	_ = logFile.Write(timestamped(s))
}

func Verbosef(format string, args ...any) {
	if Verbose {
		Logf(format, args...)
	}
}

// callstack returns "file:line" of callers, skipping skip frames
func callstack(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip+1, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	var lines []string
	for {
		frame, more := frames.Next()
		if frame.File != "" {
			lines = append(lines, frame.File+":"+strconv.Itoa(frame.Line))
		}
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// Errorf logs a message. The errors file also gets the callstack.
func Errorf(format string, args ...any) {
	errorf(3, format, args...)
}

func errorf(skip int, format string, args ...any) {
	s := format
	if len(args) > 0 {
		s = fmt.Sprintf(format, args...)
	}
	s = strings.TrimSuffix(s, "\n") + "\n"
	Logf("%s", s)
	_ = errorsFile.Write(timestamped(s + callstack(skip) + "\n"))
}

// IfErrf logs and returns true if err is not nil.
// IfErrf(err) logs err.Error(), IfErrf(err, "failed: %v", err) logs formatted message.
func IfErrf(err error, args ...any) bool {
	if err == nil {
		return false
	}
	if len(args) == 0 {
		errorf(3, "%s", err.Error())
		return true
	}
	format, ok := args[0].(string)
	if !ok {
		format = fmt.Sprint(args[0])
	}
	errorf(3, format, args[1:]...)
	return true
}
