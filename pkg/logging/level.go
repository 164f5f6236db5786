package logging

import (
	"os"
	"strings"
)

// Level orders log lines by severity.
type Level int8

const (
	DebugLevel Level = iota // per-trial detail
	InfoLevel               // phase summaries
	WarnLevel               // skipped channels, partial reachability
	ErrorLevel              // failed runs
)

var levelNames = [...]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
}

// levelEnv is consulted in order by LevelFromEnv.
var levelEnv = []string{"LNRANK_LOG_LEVEL", "LOG_LEVEL"}

func (l Level) String() string {
	if l < DebugLevel || l > ErrorLevel {
		return "UNKNOWN"
	}
	return strings.ToUpper(levelNames[l])
}

// LookupLevel resolves a case-insensitive level name. "warning" is accepted
// as an alias of "warn".
func LookupLevel(name string) (Level, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		return WarnLevel, true
	}
	for l, n := range levelNames {
		if n == name {
			return Level(l), true
		}
	}
	return InfoLevel, false
}

// ParseLevel is LookupLevel with unknown names mapped to InfoLevel.
func ParseLevel(name string) Level {
	l, _ := LookupLevel(name)
	return l
}

// LevelFromEnv returns the first level set in LNRANK_LOG_LEVEL or LOG_LEVEL,
// or InfoLevel.
func LevelFromEnv() Level {
	for _, key := range levelEnv {
		if v := os.Getenv(key); v != "" {
			return ParseLevel(v)
		}
	}
	return InfoLevel
}
