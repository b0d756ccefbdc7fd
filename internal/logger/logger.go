package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func Init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})

	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}
}

func Info(msg string, fields map[string]any) {
	log.WithFields(fields).Info(msg)
}

func Warn(msg string, fields map[string]any) {
	log.WithFields(fields).Warn(msg)
}

func Error(msg string, fields map[string]any) {
	log.WithFields(fields).Error(msg)
}

func Fatal(msg string, fields map[string]any) {
	log.WithFields(fields).Fatal(msg)
}
