package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventType represents the type of storefront event
type EventType string

const (
	// Page events
	EventPageView    EventType = "PAGE_VIEW"
	EventNotFound    EventType = "NOT_FOUND"
	EventFetchFailed EventType = "FETCH_FAILED"

	// Customer events
	EventLogin         EventType = "LOGIN"
	EventLoginFailed   EventType = "LOGIN_FAILED"
	EventLogout        EventType = "LOGOUT"
	EventProfileUpdate EventType = "PROFILE_UPDATE"
	EventCartUpdate    EventType = "CART_UPDATE"
	EventSubscribe     EventType = "SUBSCRIBE"
	EventRateLimited   EventType = "RATE_LIMITED"

	// System events
	EventStartup  EventType = "STARTUP"
	EventShutdown EventType = "SHUTDOWN"
	EventError    EventType = "ERROR"
)

// Severity represents the severity level of an event
type Severity string

const (
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Event is a single line of the event log
type Event struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Type      EventType              `json:"type"`
	Severity  Severity               `json:"severity"`
	Source    string                 `json:"source"`
	Customer  string                 `json:"customer,omitempty"`
	Resource  string                 `json:"resource,omitempty"`
	Action    string                 `json:"action"`
	Result    string                 `json:"result"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Error     string                 `json:"error,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// Logger writes events as JSON lines from a background worker and mirrors
// each one to the console logger.
type Logger struct {
	mu        sync.Mutex
	file      *os.File
	filepath  string
	maxSize   int64
	maxAge    time.Duration
	encoder   *json.Encoder
	console   zerolog.Logger
	eventChan chan *Event
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// Config represents logger configuration
type Config struct {
	FilePath string
	MaxSize  int64         // Maximum file size in bytes
	MaxAge   time.Duration // Maximum age of rotated files
	Console  *zerolog.Logger
}

// NewLogger creates a new event logger
func NewLogger(config Config) (*Logger, error) {
	dir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create event log directory: %w", err)
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log file: %w", err)
	}

	console := zerolog.Nop()
	if config.Console != nil {
		console = *config.Console
	}

	logger := &Logger{
		file:      file,
		filepath:  config.FilePath,
		maxSize:   config.MaxSize,
		maxAge:    config.MaxAge,
		encoder:   json.NewEncoder(file),
		console:   console,
		eventChan: make(chan *Event, 256),
		stopChan:  make(chan struct{}),
	}

	logger.wg.Add(1)
	go logger.worker()

	logger.LogSystem(EventStartup, "event logger started", nil)

	return logger, nil
}

// Log writes an event
func (l *Logger) Log(event *Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Details = sanitize(event.Details)

	l.mirror(event)

	select {
	case l.eventChan <- event:
	case <-time.After(time.Second):
		l.console.Warn().Str("event", string(event.Type)).Msg("event log queue full, dropping event")
	}
}

// LogFetchFailure records an upstream fetch that was substituted with an
// absent value.
func (l *Logger) LogFetchFailure(source, resource string, err error, requestID string) {
	l.Log(&Event{
		Type:      EventFetchFailed,
		Severity:  SeverityWarning,
		Source:    source,
		Resource:  resource,
		Action:    "fetch",
		Result:    "DEGRADED",
		Error:     err.Error(),
		RequestID: requestID,
	})
}

// LogCustomer logs a customer action such as a login or profile update
func (l *Logger) LogCustomer(eventType EventType, customer string, success bool, details map[string]interface{}) {
	result := "SUCCESS"
	severity := SeverityInfo
	if !success {
		result = "FAILED"
		severity = SeverityWarning
	}

	l.Log(&Event{
		Type:     eventType,
		Severity: severity,
		Source:   "account",
		Customer: customer,
		Action:   strings.ToLower(string(eventType)),
		Result:   result,
		Details:  details,
	})
}

// LogPage logs a rendered page and its status
func (l *Logger) LogPage(path string, status int, requestID string) {
	eventType := EventPageView
	severity := SeverityDebug
	if status == 404 {
		eventType = EventNotFound
		severity = SeverityInfo
	}

	l.Log(&Event{
		Type:      eventType,
		Severity:  severity,
		Source:    "http",
		Resource:  path,
		Action:    "render",
		Result:    fmt.Sprintf("%d", status),
		RequestID: requestID,
	})
}

// LogError logs an error event
func (l *Logger) LogError(source string, err error, details map[string]interface{}) {
	l.Log(&Event{
		Type:     EventError,
		Severity: SeverityError,
		Source:   source,
		Action:   "error",
		Result:   "ERROR",
		Error:    err.Error(),
		Details:  details,
	})
}

// LogSystem logs a system event
func (l *Logger) LogSystem(eventType EventType, message string, details map[string]interface{}) {
	l.Log(&Event{
		Type:     eventType,
		Severity: SeverityInfo,
		Source:   "system",
		Action:   string(eventType),
		Result:   message,
		Details:  details,
	})
}

func (l *Logger) mirror(event *Event) {
	var e *zerolog.Event
	switch event.Severity {
	case SeverityDebug:
		e = l.console.Debug()
	case SeverityWarning:
		e = l.console.Warn()
	case SeverityError:
		e = l.console.Error()
	default:
		e = l.console.Info()
	}

	e = e.Str("event", string(event.Type)).Str("source", event.Source)
	if event.Resource != "" {
		e = e.Str("resource", event.Resource)
	}
	if event.RequestID != "" {
		e = e.Str("request_id", event.RequestID)
	}
	if event.Error != "" {
		e = e.Str("error", event.Error)
	}
	if len(event.Details) > 0 {
		e = e.Fields(event.Details)
	}
	e.Msg(event.Result)
}

func (l *Logger) worker() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case event := <-l.eventChan:
			l.writeEvent(event)

		case <-ticker.C:
			l.performMaintenance()

		case <-l.stopChan:
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) writeEvent(event *Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.encoder.Encode(event); err != nil {
		l.console.Error().Err(err).Msg("failed to write event")
	}

	if l.maxSize > 0 {
		if info, err := l.file.Stat(); err == nil && info.Size() > l.maxSize {
			l.rotate()
		}
	}
}

func (l *Logger) rotate() {
	_ = l.file.Close()

	timestamp := time.Now().Format("20060102-150405.000")
	rotatedPath := fmt.Sprintf("%s.%s", l.filepath, timestamp)
	_ = os.Rename(l.filepath, rotatedPath)

	file, err := os.OpenFile(l.filepath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		l.console.Error().Err(err).Msg("failed to open new event log file")
		return
	}

	l.file = file
	l.encoder = json.NewEncoder(file)
}

// performMaintenance removes rotated files older than maxAge
func (l *Logger) performMaintenance() {
	if l.maxAge <= 0 {
		return
	}

	dir := filepath.Dir(l.filepath)
	base := filepath.Base(l.filepath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-l.maxAge)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == base || !strings.HasPrefix(name, base+".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}

// Close flushes pending events and closes the file
func (l *Logger) Close() error {
	l.LogSystem(EventShutdown, "event logger shutting down", nil)

	close(l.stopChan)
	l.wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// sanitize drops detail keys that may carry credentials
func sanitize(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		return nil
	}
	clean := make(map[string]interface{}, len(details))
	for k, v := range details {
		if !isSensitiveKey(k) {
			clean[k] = v
		}
	}
	return clean
}

func isSensitiveKey(key string) bool {
	sensitiveKeys := []string{
		"password", "secret", "token", "credential", "cookie", "authorization",
	}

	keyLower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(keyLower, sensitive) {
			return true
		}
	}
	return false
}

// Query filters events read back from the log
type Query struct {
	StartTime  time.Time
	EndTime    time.Time
	EventTypes []EventType
	Severities []Severity
	Customers  []string
	Resources  []string
	RequestID  string
	Limit      int
}

// Search reads the current log file and returns matching events
func (l *Logger) Search(query Query) ([]*Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return SearchFile(l.filepath, query)
}

// SearchFile runs a query against an event log file without a running logger
func SearchFile(path string, query Query) ([]*Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	defer file.Close()

	var events []*Event
	decoder := json.NewDecoder(file)

	for {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			break
		}

		if !query.StartTime.IsZero() && event.Timestamp.Before(query.StartTime) {
			continue
		}
		if !query.EndTime.IsZero() && event.Timestamp.After(query.EndTime) {
			continue
		}
		if len(query.EventTypes) > 0 && !slices.Contains(query.EventTypes, event.Type) {
			continue
		}
		if len(query.Severities) > 0 && !slices.Contains(query.Severities, event.Severity) {
			continue
		}
		if len(query.Customers) > 0 && !slices.Contains(query.Customers, event.Customer) {
			continue
		}
		if len(query.Resources) > 0 && !slices.Contains(query.Resources, event.Resource) {
			continue
		}
		if query.RequestID != "" && event.RequestID != query.RequestID {
			continue
		}

		events = append(events, &event)

		if query.Limit > 0 && len(events) >= query.Limit {
			break
		}
	}

	return events, nil
}
