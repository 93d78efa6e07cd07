// Package logging provides categorized logging for roadmapper, backed by
// zap. Each subsystem logs through its own named logger; nothing is
// written until Init is called, so library code can log unconditionally.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a logging subsystem.
type Category string

const (
	CategoryAgent    Category = "agent"    // turn handling, phase transitions
	CategoryProvider Category = "provider" // LLM API calls
	CategoryTools    Category = "tools"    // tool registry and dispatch
	CategoryStore    Category = "store"    // session persistence
	CategoryConfig   Category = "config"   // configuration loading
	CategoryCLI      Category = "cli"      // command-line frontend
)

var (
	mu   sync.RWMutex
	base = zap.NewNop().Sugar()
)

// Options controls log output.
type Options struct {
	// Debug enables debug-level output; otherwise info and above.
	Debug bool

	// Path appends logs to a file instead of stderr when non-empty.
	Path string
}

// Init installs the process-wide logger. Safe to call more than once;
// the last call wins.
func Init(opts Options) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if opts.Debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if opts.Path != "" {
		cfg.OutputPaths = []string{opts.Path}
		cfg.ErrorOutputPaths = []string{opts.Path}
	} else {
		cfg.OutputPaths = []string{"stderr"}
	}

	logger, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		return err
	}

	mu.Lock()
	base = logger.Sugar()
	mu.Unlock()
	return nil
}

// Sync flushes buffered log output. Call on shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

// Get returns the logger for a category.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base.Named(string(category))
}

// AgentDebug logs debug output to the agent category.
func AgentDebug(format string, args ...any) {
	Get(CategoryAgent).Debugf(format, args...)
}

// AgentInfo logs info output to the agent category.
func AgentInfo(format string, args ...any) {
	Get(CategoryAgent).Infof(format, args...)
}

// AgentError logs error output to the agent category.
func AgentError(format string, args ...any) {
	Get(CategoryAgent).Errorf(format, args...)
}

// ProviderDebug logs debug output to the provider category.
func ProviderDebug(format string, args ...any) {
	Get(CategoryProvider).Debugf(format, args...)
}

// ProviderError logs error output to the provider category.
func ProviderError(format string, args ...any) {
	Get(CategoryProvider).Errorf(format, args...)
}

// ToolsDebug logs debug output to the tools category.
func ToolsDebug(format string, args ...any) {
	Get(CategoryTools).Debugf(format, args...)
}

// StoreDebug logs debug output to the store category.
func StoreDebug(format string, args ...any) {
	Get(CategoryStore).Debugf(format, args...)
}

// StoreError logs error output to the store category.
func StoreError(format string, args ...any) {
	Get(CategoryStore).Errorf(format, args...)
}
