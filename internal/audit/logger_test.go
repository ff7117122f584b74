package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewLogger(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "logs", "events.log")

	logger, err := NewLogger(Config{
		FilePath: logPath,
		MaxSize:  1024 * 1024,
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}

	time.Sleep(100 * time.Millisecond)

	events := readEvents(t, logPath)
	if len(events) == 0 {
		t.Fatal("No startup event logged")
	}
	if events[0].Type != EventStartup {
		t.Errorf("Expected startup event, got %s", events[0].Type)
	}
	if events[0].ID == "" {
		t.Error("Startup event has no ID")
	}
}

func TestLogCustomer(t *testing.T) {
	logger := setupTestLogger(t)
	defer logger.Close()

	logger.LogCustomer(EventLogin, "ada@example.com", true, map[string]interface{}{
		"ip": "192.168.1.1",
	})
	logger.LogCustomer(EventLoginFailed, "eve@example.com", false, map[string]interface{}{
		"ip":       "10.0.0.1",
		"password": "hunter2",
	})

	time.Sleep(100 * time.Millisecond)

	events := filterEventsByType(readEvents(t, logger.filepath), EventLogin, EventLoginFailed)
	if len(events) != 2 {
		t.Fatalf("Expected 2 login events, got %d", len(events))
	}

	if events[0].Customer != "ada@example.com" || events[0].Result != "SUCCESS" {
		t.Errorf("Unexpected successful login event: %+v", events[0])
	}
	if events[1].Result != "FAILED" || events[1].Severity != SeverityWarning {
		t.Errorf("Unexpected failed login event: %+v", events[1])
	}
	if _, ok := events[1].Details["password"]; ok {
		t.Error("Password should have been stripped from details")
	}
	if events[1].Details["ip"] != "10.0.0.1" {
		t.Error("Non-sensitive detail should be kept")
	}
}

func TestLogFetchFailure(t *testing.T) {
	logger := setupTestLogger(t)
	defer logger.Close()

	logger.LogFetchFailure("cms", "shopify_home", errors.New("connection refused"), "req-1")

	time.Sleep(100 * time.Millisecond)

	events := filterEventsByType(readEvents(t, logger.filepath), EventFetchFailed)
	if len(events) != 1 {
		t.Fatalf("Expected 1 fetch failure event, got %d", len(events))
	}
	event := events[0]
	if event.Error != "connection refused" {
		t.Errorf("Wrong error: %s", event.Error)
	}
	if event.Resource != "shopify_home" || event.RequestID != "req-1" {
		t.Errorf("Unexpected event: %+v", event)
	}
}

func TestLogPage(t *testing.T) {
	logger := setupTestLogger(t)
	defer logger.Close()

	logger.LogPage("/products/shirt", 200, "")
	logger.LogPage("/products/missing", 404, "")

	time.Sleep(100 * time.Millisecond)

	events := readEvents(t, logger.filepath)
	if got := filterEventsByType(events, EventPageView); len(got) != 1 || got[0].Resource != "/products/shirt" {
		t.Errorf("Expected one page view, got %+v", got)
	}
	if got := filterEventsByType(events, EventNotFound); len(got) != 1 || got[0].Result != "404" {
		t.Errorf("Expected one not found event, got %+v", got)
	}
}

func TestConsoleMirror(t *testing.T) {
	var buf bytes.Buffer
	console := zerolog.New(&buf)

	logger, err := NewLogger(Config{
		FilePath: filepath.Join(t.TempDir(), "events.log"),
		Console:  &console,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.LogError("commerce", errors.New("boom"), map[string]interface{}{"query": "product"})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"event":"ERROR"`, `"error":"boom"`, `"query":"product"`, `"level":"error"`} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %s: %s", want, out)
		}
	}
}

func TestLogRotation(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "events.log")

	logger, err := NewLogger(Config{
		FilePath: logPath,
		MaxSize:  100,
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	for i := 0; i < 10; i++ {
		logger.LogCustomer(EventCartUpdate, "customer", true, map[string]interface{}{
			"iteration": i,
			"data":      "some data to increase size",
		})
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)

	files, err := filepath.Glob(filepath.Join(tempDir, "events.log.*"))
	if err != nil {
		t.Fatalf("Failed to list files: %v", err)
	}
	if len(files) == 0 {
		t.Error("No rotated files found")
	}
}

func TestPerformMaintenance(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "events.log")

	logger, err := NewLogger(Config{FilePath: logPath, MaxAge: time.Hour})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	old := logPath + ".20200101-000000.000"
	if err := os.WriteFile(old, []byte("{}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}
	unrelated := filepath.Join(tempDir, "other.log")
	if err := os.WriteFile(unrelated, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	_ = os.Chtimes(unrelated, past, past)

	logger.performMaintenance()

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Old rotated file should have been removed")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("Unrelated file should be kept")
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Error("Active log should be kept")
	}
}

func TestSearch(t *testing.T) {
	logger := setupTestLogger(t)
	defer logger.Close()

	logger.LogCustomer(EventLogin, "user1", true, nil)
	logger.LogCustomer(EventLoginFailed, "user2", false, nil)
	logger.LogCustomer(EventCartUpdate, "user1", true, nil)
	logger.LogError("commerce", errors.New("error1"), nil)

	time.Sleep(200 * time.Millisecond)

	results, err := logger.Search(Query{EventTypes: []EventType{EventLogin}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 login event, got %d", len(results))
	}

	results, err = logger.Search(Query{Customers: []string{"user1"}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 events for user1, got %d", len(results))
	}

	results, err = logger.Search(Query{Severities: []Severity{SeverityError}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Source != "commerce" {
		t.Errorf("Expected the commerce error, got %+v", results)
	}

	results, err = logger.Search(Query{Limit: 2})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) > 2 {
		t.Errorf("Expected max 2 results, got %d", len(results))
	}

	if _, err := SearchFile(filepath.Join(t.TempDir(), "missing.log"), Query{}); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestConcurrentLogging(t *testing.T) {
	logger := setupTestLogger(t)
	defer logger.Close()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			logger.LogCustomer(EventSubscribe, fmt.Sprintf("user%d@example.com", id), true, nil)
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	time.Sleep(200 * time.Millisecond)

	events := filterEventsByType(readEvents(t, logger.filepath), EventSubscribe)
	if len(events) != 10 {
		t.Errorf("Expected 10 subscribe events, got %d", len(events))
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key       string
		sensitive bool
	}{
		{"password", true},
		{"customerAccessToken", true},
		{"session_secret", true},
		{"Cookie", true},
		{"handle", false},
		{"ip", false},
		{"query", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := isSensitiveKey(tt.key); got != tt.sensitive {
				t.Errorf("isSensitiveKey(%q) = %v, want %v", tt.key, got, tt.sensitive)
			}
		})
	}
}

func setupTestLogger(t *testing.T) *Logger {
	t.Helper()
	logger, err := NewLogger(Config{
		FilePath: filepath.Join(t.TempDir(), "events.log"),
		MaxSize:  1024 * 1024,
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("Failed to create test logger: %v", err)
	}
	return logger
}

func readEvents(t *testing.T, path string) []*Event {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var events []*Event
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("Failed to parse event: %v", err)
		}
		events = append(events, &event)
	}
	return events
}

func filterEventsByType(events []*Event, types ...EventType) []*Event {
	var filtered []*Event
	for _, event := range events {
		for _, typ := range types {
			if event.Type == typ {
				filtered = append(filtered, event)
				break
			}
		}
	}
	return filtered
}
