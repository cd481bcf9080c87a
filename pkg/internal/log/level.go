/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// Level is a log level.
type Level zapcore.Level

// Log levels.
const (
	DEBUG   = Level(zapcore.DebugLevel)
	INFO    = Level(zapcore.InfoLevel)
	WARNING = Level(zapcore.WarnLevel)
	ERROR   = Level(zapcore.ErrorLevel)
	PANIC   = Level(zapcore.PanicLevel)
	FATAL   = Level(zapcore.FatalLevel)
)

const (
	moduleLevelSeparator = "="
	specSeparator        = ":"
)

var levelNames = map[Level]string{
	DEBUG:   "DEBUG",
	INFO:    "INFO",
	WARNING: "WARNING",
	ERROR:   "ERROR",
	PANIC:   "PANIC",
	FATAL:   "FATAL",
}

// String returns the upper-case name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}

	return fmt.Sprintf("Level(%d)", l)
}

// Enabled returns true if a message at the given zap level would be logged at this level.
func (l Level) Enabled(level zapcore.Level) bool {
	return zapcore.Level(l).Enabled(level)
}

// ParseLevel returns the level for the given (case-insensitive) name.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn", "warning":
		return WARNING, nil
	case "error":
		return ERROR, nil
	case "panic":
		return PANIC, nil
	case "fatal", "critical":
		return FATAL, nil
	default:
		return ERROR, fmt.Errorf("invalid log level: %s", name)
	}
}

type moduleLevels struct {
	mutex        sync.RWMutex
	levels       map[string]Level
	defaultLevel Level
}

var levels = &moduleLevels{
	levels:       make(map[string]Level),
	defaultLevel: INFO,
}

// SetLevel sets the log level for the given module.
func SetLevel(module string, level Level) {
	levels.mutex.Lock()
	defer levels.mutex.Unlock()

	levels.levels[module] = level
}

// SetDefaultLevel sets the level used by modules that have no explicit level.
func SetDefaultLevel(level Level) {
	levels.mutex.Lock()
	defer levels.mutex.Unlock()

	levels.defaultLevel = level
}

// GetLevel returns the log level of the given module.
func GetLevel(module string) Level {
	levels.mutex.RLock()
	defer levels.mutex.RUnlock()

	if level, ok := levels.levels[module]; ok {
		return level
	}

	return levels.defaultLevel
}

// SetSpec sets module levels and the default level from a spec of the form
// module1=level1:module2=level2:defaultLevel.
func SetSpec(spec string) error {
	moduleSpecs := make(map[string]Level)
	defaultLevel := GetDefaultLevel()

	for _, part := range strings.Split(spec, specSeparator) {
		if strings.TrimSpace(part) == "" {
			continue
		}

		kv := strings.Split(part, moduleLevelSeparator)

		switch len(kv) {
		case 1:
			level, err := ParseLevel(kv[0])
			if err != nil {
				return err
			}

			defaultLevel = level
		case 2:
			level, err := ParseLevel(kv[1])
			if err != nil {
				return err
			}

			moduleSpecs[strings.TrimSpace(kv[0])] = level
		default:
			return fmt.Errorf("invalid log spec: %s", spec)
		}
	}

	levels.mutex.Lock()
	defer levels.mutex.Unlock()

	for module, level := range moduleSpecs {
		levels.levels[module] = level
	}

	levels.defaultLevel = defaultLevel

	return nil
}

// GetSpec returns the current log spec.
func GetSpec() string {
	levels.mutex.RLock()
	defer levels.mutex.RUnlock()

	modules := make([]string, 0, len(levels.levels))
	for module := range levels.levels {
		modules = append(modules, module)
	}

	sort.Strings(modules)

	var sb strings.Builder

	for _, module := range modules {
		sb.WriteString(module)
		sb.WriteString(moduleLevelSeparator)
		sb.WriteString(levels.levels[module].String())
		sb.WriteString(specSeparator)
	}

	sb.WriteString(levels.defaultLevel.String())

	return sb.String()
}

// GetDefaultLevel returns the default log level.
func GetDefaultLevel() Level {
	levels.mutex.RLock()
	defer levels.mutex.RUnlock()

	return levels.defaultLevel
}
