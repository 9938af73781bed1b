// Package gologger adapts github.com/goliatone/go-logger to the pagetlai
// Logger contract.
package gologger

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/pagetlai"
	glog "github.com/goliatone/go-logger/glog"
)

// Config captures the options exposed by the adapter.
type Config struct {
	Level     string
	Format    string
	AddSource bool
}

// Provider hands out named go-logger child loggers.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider constructs a provider backed by go-logger.
func NewProvider(cfg Config) (*Provider, error) {
	options := []glog.Option{}

	if level := normalizeLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}

	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	return &Provider{root: glog.NewLogger(options...)}, nil
}

// Logger returns the child logger for a component, or the root logger
// when name is empty.
func (p *Provider) Logger(name string) *Logger {
	if p == nil {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Wrap(p.root)
	}
	return Wrap(p.root.GetLogger(name))
}

// Logger adapts a go-logger Logger to pagetlai.Logger.
type Logger struct {
	inner glog.Logger
}

// Wrap adapts inner. A nil inner yields a logger that discards entries.
func Wrap(inner glog.Logger) *Logger {
	return &Logger{inner: inner}
}

func (l *Logger) Debug(msg string, args ...any) {
	if l.inner != nil {
		l.inner.Debug(msg, args...)
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l.inner != nil {
		l.inner.Info(msg, args...)
	}
}

func (l *Logger) Warn(msg string, args ...any) {
	if l.inner != nil {
		l.inner.Warn(msg, args...)
	}
}

func (l *Logger) Error(msg string, args ...any) {
	if l.inner != nil {
		l.inner.Error(msg, args...)
	}
}

// WithFields returns a logger carrying fields when the backend supports it.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if len(fields) == 0 || l.inner == nil {
		return l
	}
	if with, ok := l.inner.(glog.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		return Wrap(with.WithFields(copied))
	}
	return l
}

// WithContext binds ctx to the logger.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil || l.inner == nil {
		return l
	}
	return Wrap(l.inner.WithContext(ctx))
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	default:
		return ""
	}
}

var _ pagetlai.Logger = (*Logger)(nil)
