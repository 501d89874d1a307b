package main

import (
	"fmt"
	"io"
	"log"
	"os"
)

const logQueueSize = 1024

const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelTags = [...]string{
	LevelDebug: "[DEBUG] ",
	LevelInfo:  "[INFO] ",
	LevelWarn:  "[WARN] ",
	LevelError: "[ERROR] ",
}

// TrieLogger formats messages on the caller's goroutine and writes them from
// its own, so handlers never block corpus building or query answering.
type TrieLogger struct {
	level   int
	lines   chan string
	done    chan struct{}
	outputs map[string]*log.Logger
	closers []io.Closer
}

func NewLogger() *TrieLogger {
	l := &TrieLogger{
		lines:   make(chan string, logQueueSize),
		done:    make(chan struct{}),
		outputs: make(map[string]*log.Logger),
	}
	go l.Run()
	return l
}

// SetLogger adds an output: "console" for stderr, or "file" with a "file"
// path in config. It must be called before any message is written.
func (l *TrieLogger) SetLogger(handlerType string, config map[string]interface{}) error {
	var w io.Writer
	switch handlerType {
	case "console":
		// stdout carries the query report
		w = os.Stderr
	case "file":
		path, _ := config["file"].(string)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		l.closers = append(l.closers, f)
		w = f
	default:
		panic("Unknown log handler.")
	}
	l.outputs[handlerType] = log.New(w, "", log.Ldate|log.Ltime)
	return nil
}

func (l *TrieLogger) SetLevel(level int) {
	l.level = level
}

func (l *TrieLogger) Run() {
	defer close(l.done)
	for line := range l.lines {
		for _, out := range l.outputs {
			out.Println(line)
		}
	}
}

// Close flushes queued messages. The logger must not be used afterwards.
func (l *TrieLogger) Close() {
	close(l.lines)
	<-l.done
	for _, c := range l.closers {
		c.Close()
	}
}

func (l *TrieLogger) logf(level int, format string, v ...interface{}) {
	if level < l.level {
		return
	}
	l.lines <- levelTags[level] + fmt.Sprintf(format, v...)
}

func (l *TrieLogger) Debug(format string, v ...interface{}) { l.logf(LevelDebug, format, v...) }
func (l *TrieLogger) Info(format string, v ...interface{})  { l.logf(LevelInfo, format, v...) }
func (l *TrieLogger) Warn(format string, v ...interface{})  { l.logf(LevelWarn, format, v...) }
func (l *TrieLogger) Error(format string, v ...interface{}) { l.logf(LevelError, format, v...) }
