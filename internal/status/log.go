package status

// LogLevel is the severity of a log record.
type LogLevel string

const (
	LogDebug     LogLevel = "DEBUG"
	LogOK        LogLevel = "OK"
	LogInfo      LogLevel = "INFO"
	LogError     LogLevel = "ERROR"
	LogWarning   LogLevel = "WARNING"
	LogCritical  LogLevel = "CRITICAL"
	LogEmergency LogLevel = "EMERGENCY"
)

// LogLevels is indexed by a log record's 1-based Level minus one.
var LogLevels = [...]LogLevel{
	LogDebug,
	LogOK,
	LogInfo,
	LogError,
	LogWarning,
	LogCritical,
	LogEmergency,
}

func (l LogLevel) String() string { return string(l) }

var logRowClasses = map[LogLevel]string{
	LogDebug:     "",
	LogOK:        "table-success",
	LogInfo:      "table-info",
	LogWarning:   "table-warning",
	LogCritical:  "table-danger",
	LogError:     "table-dark",
	LogEmergency: "table-dark",
}

// LogLevelAt resolves a 1-based log severity index.
func LogLevelAt(index int) (LogLevel, bool) {
	if index < 1 || index > len(LogLevels) {
		return "", false
	}
	return LogLevels[index-1], true
}

// ParseLogLevel returns the 1-based index of a log level name, or 0 if the
// name is unknown. Names are matched exactly.
func ParseLogLevel(name string) int {
	for i, l := range LogLevels {
		if string(l) == name {
			return i + 1
		}
	}
	return 0
}

// LogRowClass returns the table row class for a 1-based log severity index.
// DEBUG and out-of-range indices get "".
func LogRowClass(index int) string {
	l, ok := LogLevelAt(index)
	if !ok {
		return ""
	}
	return logRowClasses[l]
}

// Entry is a log record that knows its 1-based severity index.
type Entry interface {
	SeverityIndex() int
}

// FilterLogsByLevel keeps the entries at or above minLevel. An unknown
// minLevel disables filtering and logs is returned as is.
func FilterLogsByLevel[E Entry](logs []E, minLevel string) []E {
	minIndex := ParseLogLevel(minLevel)
	if minIndex == 0 {
		return logs
	}

	kept := make([]E, 0, len(logs))
	for _, e := range logs {
		if e.SeverityIndex() >= minIndex {
			kept = append(kept, e)
		}
	}
	return kept
}
