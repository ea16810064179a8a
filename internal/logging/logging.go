package logging

import (
	"io"
	"io/ioutil"
	"log"
	"os"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelNone
)

var loggers = map[Level]*log.Logger{}

func init() {
	flags := log.Ldate | log.Ltime | log.LUTC
	loggers[LevelDebug] = log.New(ioutil.Discard, "D ", flags)
	loggers[LevelInfo] = log.New(ioutil.Discard, "I ", flags)
	loggers[LevelWarning] = log.New(ioutil.Discard, "W ", flags)
	loggers[LevelError] = log.New(ioutil.Discard, "E ", flags)

	SetLevel(LevelWarning)
}

// SetLevel enables output for all messages with the given level or above.
func SetLevel(l Level) {
	for lvl, logger := range loggers {
		var w io.Writer = ioutil.Discard
		if lvl >= l {
			w = os.Stderr
		}
		logger.SetOutput(w)
	}
}

func Debug(msg string, v ...interface{}) {
	loggers[LevelDebug].Printf(msg, v...)
}

func Info(msg string, v ...interface{}) {
	loggers[LevelInfo].Printf(msg, v...)
}

func Warning(msg string, v ...interface{}) {
	loggers[LevelWarning].Printf(msg, v...)
}

func Error(msg string, v ...interface{}) {
	loggers[LevelError].Printf(msg, v...)
}
