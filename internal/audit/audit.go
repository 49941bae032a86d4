// Package audit provides append-only JSON-lines logging of pipeline
// lifecycle events (run start/completion/failure, individual domination
// decisions) for compliance and post-hoc debugging, the same
// once-initialized-singleton-logger shape DNShield's audit package
// uses.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// EventType identifies the kind of audit event.
type EventType string

const (
	EventRunStarted    EventType = "RUN_STARTED"
	EventRunCompleted  EventType = "RUN_COMPLETED"
	EventRunFailed     EventType = "RUN_FAILED"
	EventRuleDominated EventType = "RULE_DOMINATED"
)

// Event represents an audit log entry.
type Event struct {
	Timestamp   time.Time              `json:"timestamp"`
	Type        EventType              `json:"type"`
	Severity    string                 `json:"severity"`
	Message     string                 `json:"message"`
	Details     map[string]interface{} `json:"details,omitempty"`
	ProcessID   int                    `json:"process_id"`
	ProcessName string                 `json:"process_name"`
}

// Logger appends Events as JSON lines to a daily log file.
type Logger struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
	logPath string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Initialize sets up the process-wide audit logger under
// ~/.blockfold/audit/audit-<date>.log. Safe to call more than once;
// only the first call takes effect.
func Initialize() error {
	var err error
	once.Do(func() {
		home, _ := os.UserHomeDir()
		auditDir := filepath.Join(home, ".blockfold", "audit")
		if mkErr := os.MkdirAll(auditDir, 0700); mkErr != nil {
			err = mkErr
			return
		}

		logFile := fmt.Sprintf("audit-%s.log", time.Now().Format("2006-01-02"))
		logPath := filepath.Join(auditDir, logFile)

		file, openErr := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if openErr != nil {
			err = openErr
			return
		}

		defaultLogger = &Logger{
			file:    file,
			encoder: json.NewEncoder(file),
			logPath: logPath,
		}
	})

	return err
}

// Log records an audit event, falling back to a plain logrus entry if
// Initialize was never called.
func Log(eventType EventType, severity, message string, details map[string]interface{}) {
	if defaultLogger == nil {
		logrus.WithFields(logrus.Fields{
			"audit_type": eventType,
			"details":    details,
		}).Info(message)
		return
	}

	event := Event{
		Timestamp:   time.Now(),
		Type:        eventType,
		Severity:    severity,
		Message:     message,
		Details:     details,
		ProcessID:   os.Getpid(),
		ProcessName: filepath.Base(os.Args[0]),
	}

	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()

	if err := defaultLogger.encoder.Encode(event); err != nil {
		logrus.WithError(err).Error("audit: failed to write audit log")
	}

	logrus.WithFields(logrus.Fields{
		"audit_type": eventType,
		"severity":   severity,
		"details":    details,
	}).Info(message)
}

// LogRunStarted records the beginning of a dedupe or diff run.
func LogRunStarted(mode string, inputCount int) {
	Log(EventRunStarted, "info", fmt.Sprintf("%s run started", mode), map[string]interface{}{
		"mode":        mode,
		"input_count": inputCount,
	})
}

// LogRunCompleted records a successful run.
func LogRunCompleted(mode string, rulesEmitted int, duration time.Duration) {
	Log(EventRunCompleted, "info", fmt.Sprintf("%s run completed", mode), map[string]interface{}{
		"mode":          mode,
		"rules_emitted": rulesEmitted,
		"duration":      duration.String(),
	})
}

// LogRunFailed records a run that aborted with an error.
func LogRunFailed(mode string, cause error) {
	Log(EventRunFailed, "error", fmt.Sprintf("%s run failed", mode), map[string]interface{}{
		"mode":  mode,
		"error": cause.Error(),
	})
}

// LogRuleDominated records a rule pruned by a shorter, Full-strength
// ancestor during insertion.
func LogRuleDominated(dominated, dominator string) {
	Log(EventRuleDominated, "info", fmt.Sprintf("%s dominated by %s", dominated, dominator), map[string]interface{}{
		"dominated": dominated,
		"dominator": dominator,
	})
}

// Close closes the audit logger.
func Close() error {
	if defaultLogger != nil {
		return defaultLogger.file.Close()
	}
	return nil
}

// GetLogPath returns the current audit log path.
func GetLogPath() string {
	if defaultLogger != nil {
		return defaultLogger.logPath
	}
	return ""
}
