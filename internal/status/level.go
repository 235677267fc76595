// Package status classifies wigo status codes and log severities into the
// severity levels the dashboard filters and colors by.
//
// Two taxonomies coexist: Level for host/probe/group status codes and LogLevel
// for log records. They share names but not membership or order, and there is
// deliberately no conversion between them.
package status

// Level is the severity of a status code.
type Level string

const (
	LevelOK       Level = "OK"
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelCritical Level = "CRITICAL"
	LevelError    Level = "ERROR"
)

// Levels lists status levels from least to most severe.
var Levels = []Level{LevelOK, LevelInfo, LevelWarning, LevelCritical, LevelError}

func (l Level) String() string { return string(l) }

// FromCode maps a status code to its level. Bands are evaluated in order and
// the first match wins:
//
//	< 100      ERROR
//	  100      OK
//	101..199   INFO
//	200..299   WARNING
//	300..499   CRITICAL
//	>= 500     ERROR
func FromCode(code int) Level {
	switch {
	case code < 100:
		return LevelError
	case code == 100:
		return LevelOK
	case code < 200:
		return LevelInfo
	case code < 300:
		return LevelWarning
	case code < 500:
		return LevelCritical
	default:
		return LevelError
	}
}

// Valid reports whether l is one of the five status levels.
func (l Level) Valid() bool {
	switch l {
	case LevelOK, LevelInfo, LevelWarning, LevelCritical, LevelError:
		return true
	}
	return false
}
