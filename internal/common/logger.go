// Package common provides shared utilities used across all features
package common

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogLevel sets the global zerolog level from its configured name,
// falling back to info for unknown values.
func ConfigureLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// ServiceIdentifier names a DI service for logging purposes.
type ServiceIdentifier interface {
	ID() string
}

// ServiceLogger provides structured logging for DI services
type ServiceLogger struct {
	svc ServiceIdentifier

	debug        bool
	whiteListSvc map[string]map[string]struct{}
}

// NewServiceLogger creates a new logger for a service
func NewServiceLogger(svc ServiceIdentifier) *ServiceLogger {
	return &ServiceLogger{svc: svc, debug: false, whiteListSvc: make(map[string]map[string]struct{})}
}

func (l *ServiceLogger) SetDebugMode(debug bool) {
	l.debug = debug
}

func (l *ServiceLogger) EnableLogForServices(svc []string) {
	for _, s := range svc {
		l.whiteListSvc[s] = make(map[string]struct{})
	}
}

func (l *ServiceLogger) Info(msg string, method string) string {
	if l.enabled(method) {
		log.Info().Str("service", l.svc.ID()).Str("method", method).Msg(msg)
	}
	return msg
}

func (l *ServiceLogger) Error(err error, msg string, method string) string {
	if l.enabled(method) {
		log.Error().Str("service", l.svc.ID()).Str("method", method).Err(err).Msg(msg)
	}
	return msg
}

func (l *ServiceLogger) enabled(method string) bool {
	if !l.debug {
		return false
	}
	methods, ok := l.whiteListSvc[l.svc.ID()]
	if !ok {
		return false
	}
	if len(methods) == 0 {
		return true
	}
	_, ok = methods[method]
	return ok
}
