package utils

import (
	"io"
	"log"
)

type Logger struct {
	debugLogger *log.Logger
	infoLogger  *log.Logger
	errorLogger *log.Logger
	fatalLogger *log.Logger
	debug       bool
}

func NewLogger(debug bool, out io.Writer) *Logger {
	return &Logger{
		debugLogger: log.New(out, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile),
		infoLogger:  log.New(out, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(out, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
		fatalLogger: log.New(out, "FATAL: ", log.Ldate|log.Ltime|log.Lshortfile),
		debug:       debug,
	}
}

func (l *Logger) Debug(v ...interface{}) {
	if l.debug {
		l.debugLogger.Println(v...)
	}
}

func (l *Logger) Info(v ...interface{}) {
	l.infoLogger.Println(v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.errorLogger.Println(v...)
}

func (l *Logger) Fatal(v ...interface{}) {
	l.fatalLogger.Fatalln(v...)
}
