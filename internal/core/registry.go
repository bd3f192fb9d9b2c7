package core

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// FormatInfo describes an import format for listings and help text.
type FormatInfo struct {
	Key         string `json:"key" yaml:"key"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
	Example     string `json:"example" yaml:"example"`
}

// Env carries the dependencies a format needs to build a Runner.
type Env struct {
	DB       TxBeginner
	Reader   FileReader
	Recorder Recorder
	Logger   *slog.Logger
}

// FormatDefinition registers a format under Info.Key.
type FormatDefinition struct {
	Info      FormatInfo
	NewRunner func(env Env) Runner
}

var (
	registry   = make(map[string]FormatDefinition)
	registryMu sync.RWMutex
)

// Register adds a format. It panics if the key is already taken.
func Register(def FormatDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("format already registered: %s", def.Info.Key))
	}
	registry[def.Info.Key] = def
}

// Get returns the format registered under key.
func Get(key string) (FormatDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// NewRunner builds a Runner for key, or fails with ErrUnknownFormat.
func NewRunner(key string, env Env) (Runner, error) {
	def, ok := Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, key)
	}
	return def.NewRunner(env), nil
}

// All returns every registered format sorted by key.
func All() []FormatDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]FormatDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Key < result[j].Info.Key
	})
	return result
}

// Keys returns the registered format keys in sorted order.
func Keys() []string {
	defs := All()
	keys := make([]string, len(defs))
	for i, def := range defs {
		keys[i] = def.Info.Key
	}
	return keys
}

// Clear removes all registered formats. Tests use it to start clean.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]FormatDefinition)
}
