package logger

import (
	"crypto/sha256"
	"fmt"
	"log"
	"strings"
)

// Level уровень логирования
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// Logger предоставляет логирование без PII (личных данных).
// Значения чувствительных ключей (id пользователей, коды, подписи к файлам)
// хешируются перед выводом.
type Logger struct {
	level Level
}

// New создаёт логгер с указанным уровнем ("debug", "info", "warn", "error").
// Неизвестный уровень трактуется как info.
func New(level string) *Logger {
	switch strings.ToLower(level) {
	case "debug":
		return &Logger{level: LevelDebug}
	case "warn":
		return &Logger{level: LevelWarn}
	case "error":
		return &Logger{level: LevelError}
	default:
		return &Logger{level: LevelInfo}
	}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.write(LevelDebug, msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.write(LevelInfo, msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.write(LevelWarn, msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.write(LevelError, msg, keysAndValues...)
}

func (l *Logger) write(level Level, msg string, keysAndValues ...interface{}) {
	if level < l.level {
		return
	}

	parts := make([]string, 0, 2+len(keysAndValues)/2)
	parts = append(parts, fmt.Sprintf("[%s]", levelNames[level]), msg)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key := fmt.Sprintf("%v", keysAndValues[i])
		val := fmt.Sprintf("%v", keysAndValues[i+1])
		if isPrivateKey(key) {
			val = hashValue(val)
		}
		parts = append(parts, fmt.Sprintf("%s=%s", key, val))
	}

	log.Println(strings.Join(parts, " "))
}

// isPrivateKey определяет, является ли ключ чувствительным.
// Код файла даёт доступ к содержимому, поэтому логируем только хеш.
func isPrivateKey(key string) bool {
	switch strings.ToLower(key) {
	case "userid", "user_id", "owner", "username",
		"code", "caption", "file", "filename", "path",
		"token", "phone", "email":
		return true
	}
	return false
}

func hashValue(val string) string {
	h := sha256.Sum256([]byte(val))
	return fmt.Sprintf("%x", h[:8])
}
