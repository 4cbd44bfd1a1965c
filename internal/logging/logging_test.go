// Package logging_test provides tests for the launcher logging package.
package logging_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"logstash-launcher/internal/logging"
)

func fileOnlyConfig(dir, file, level string) *logging.Config {
	return &logging.Config{
		Level:         level,
		LogDir:        dir,
		LogFile:       file,
		MaxSizeMB:     1,
		MaxBackups:    1,
		EnableConsole: false,
		EnableFile:    true,
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.ConsoleLevel != "error" {
		t.Errorf("expected console level 'error', got %q", cfg.ConsoleLevel)
	}
	if cfg.LogDir != "/var/log/logstash" {
		t.Errorf("expected log dir '/var/log/logstash', got %q", cfg.LogDir)
	}
	if cfg.LogFile != "launcher.jsonl" {
		t.Errorf("expected log file 'launcher.jsonl', got %q", cfg.LogFile)
	}
	if !cfg.EnableConsole || !cfg.EnableFile {
		t.Error("console and file should be enabled by default")
	}
}

func TestConsoleOnly(t *testing.T) {
	cfg := logging.DefaultConfig()
	fallback := logging.ConsoleOnly(cfg)

	if fallback.EnableFile {
		t.Error("fallback should disable the file core")
	}
	if !cfg.EnableFile {
		t.Error("ConsoleOnly must not mutate its argument")
	}
}

func TestLoggerOutputsJSONL(t *testing.T) {
	t.Cleanup(func() { _ = logging.Close() })
	tmpDir := t.TempDir()

	if err := logging.Setup(fileOnlyConfig(tmpDir, "jsonl-test.jsonl", "info")); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	logging.L().Info("launch_exec",
		logging.Path("/usr/bin/java"),
		logging.Argv([]string{"logstash", "-Xmx32m"}),
	)
	_ = logging.Sync()

	lines := readLines(t, filepath.Join(tmpDir, "jsonl-test.jsonl"))
	if len(lines) == 0 {
		t.Fatal("no log lines written")
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("line is not valid JSON: %v\nLine: %s", err, lines[0])
	}
	for _, key := range []string{"timestamp", "level", "msg", "service", "pid"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("log entry missing %q field", key)
		}
	}
	if entry["service"] != logging.ServiceName {
		t.Errorf("expected service %q, got %v", logging.ServiceName, entry["service"])
	}
	argv, ok := entry["argv"].([]interface{})
	if !ok || len(argv) != 2 || argv[0] != "logstash" {
		t.Errorf("unexpected argv field: %v", entry["argv"])
	}
}

func TestConsoleLevelIsIndependent(t *testing.T) {
	t.Cleanup(func() { _ = logging.Close() })
	tmpDir := t.TempDir()
	var console bytes.Buffer

	cfg := fileOnlyConfig(tmpDir, "split.jsonl", "info")
	cfg.EnableConsole = true
	cfg.ConsoleLevel = "error"
	cfg.Console = &console

	if err := logging.Setup(cfg); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	logging.L().Info("quiet_on_console")
	logging.L().Error("loud_on_console")
	_ = logging.Sync()

	out := console.String()
	if strings.Contains(out, "quiet_on_console") {
		t.Error("info entry should not reach the console at error level")
	}
	if !strings.Contains(out, "loud_on_console") {
		t.Error("error entry should reach the console")
	}

	lines := readLines(t, filepath.Join(tmpDir, "split.jsonl"))
	if len(lines) != 2 {
		t.Errorf("expected both entries in the file, got %d", len(lines))
	}
}

func TestLogLevels(t *testing.T) {
	t.Cleanup(func() { _ = logging.Close() })
	tmpDir := t.TempDir()

	testCases := []struct {
		level    string
		logFunc  func()
		expected bool
	}{
		{level: "debug", logFunc: func() { logging.L().Debug("debug message") }, expected: true},
		{level: "info", logFunc: func() { logging.L().Debug("debug message") }, expected: false},
		{level: "warn", logFunc: func() { logging.L().Info("info message") }, expected: false},
		{level: "ERROR", logFunc: func() { logging.L().Warn("warn message") }, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			logFile := strings.ToLower(tc.level) + "-test.jsonl"
			if err := logging.Setup(fileOnlyConfig(tmpDir, logFile, tc.level)); err != nil {
				t.Fatalf("Setup failed: %v", err)
			}

			tc.logFunc()
			_ = logging.Sync()

			content, err := os.ReadFile(filepath.Join(tmpDir, logFile))
			if err != nil && !os.IsNotExist(err) {
				t.Fatalf("failed to read log file: %v", err)
			}

			hasContent := len(strings.TrimSpace(string(content))) > 0
			if hasContent != tc.expected {
				t.Errorf("at level %s, expected content=%v, got content=%v", tc.level, tc.expected, hasContent)
			}
		})
	}
}

func TestSugaredLogger(t *testing.T) {
	t.Cleanup(func() { _ = logging.Close() })
	tmpDir := t.TempDir()

	if err := logging.Setup(fileOnlyConfig(tmpDir, "sugar-test.jsonl", "info")); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	logging.S().Infow("structured_log", "key1", "value1", "key2", 42)
	_ = logging.Sync()

	lines := readLines(t, filepath.Join(tmpDir, "sugar-test.jsonl"))
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("failed to parse log line: %v", err)
	}
	if entry["key1"] != "value1" {
		t.Errorf("expected key1='value1', got %v", entry["key1"])
	}
	if entry["key2"] != float64(42) {
		t.Errorf("expected key2=42, got %v", entry["key2"])
	}
}

func TestLogDirectoryCreation(t *testing.T) {
	t.Cleanup(func() { _ = logging.Close() })
	nestedDir := filepath.Join(t.TempDir(), "nested", "logs", "dir")

	if err := logging.Setup(fileOnlyConfig(nestedDir, "nested.jsonl", "info")); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	logging.L().Info("test")
	_ = logging.Sync()

	if _, err := os.Stat(nestedDir); os.IsNotExist(err) {
		t.Error("nested log directory was not created")
	}
}

func TestSetupFailsOnUnwritableDir(t *testing.T) {
	t.Cleanup(func() { _ = logging.Close() })
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	// A regular file where the directory should be makes MkdirAll fail.
	err := logging.Setup(fileOnlyConfig(filepath.Join(blocker, "logs"), "x.jsonl", "info"))
	if err == nil {
		t.Fatal("expected Setup to fail")
	}
}

func TestLBeforeSetupIsNoop(t *testing.T) {
	_ = logging.Close()
	logging.L().Info("dropped")
	logging.S().Infow("dropped")
}

func TestSetupFailsWhenLogFileCannotBeOpened(t *testing.T) {
	t.Cleanup(func() { _ = logging.Close() })
	tmpDir := t.TempDir()
	// The directory exists, but the log file name is taken by a directory.
	if err := os.Mkdir(filepath.Join(tmpDir, "taken.jsonl"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := logging.Setup(fileOnlyConfig(tmpDir, "taken.jsonl", "info")); err == nil {
		t.Fatal("expected Setup to fail before the first write")
	}
}

func TestFileLoggerSkipsConsole(t *testing.T) {
	t.Cleanup(func() { _ = logging.Close() })
	tmpDir := t.TempDir()
	var console bytes.Buffer

	cfg := fileOnlyConfig(tmpDir, "file.jsonl", "info")
	cfg.EnableConsole = true
	cfg.ConsoleLevel = "error"
	cfg.Console = &console

	if err := logging.Setup(cfg); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	logging.File().Error("file_only_failure")
	_ = logging.Sync()

	if console.Len() != 0 {
		t.Errorf("console should stay empty, got %q", console.String())
	}
	lines := readLines(t, filepath.Join(tmpDir, "file.jsonl"))
	if len(lines) != 1 || !strings.Contains(lines[0], "file_only_failure") {
		t.Errorf("expected the entry in the file, got %v", lines)
	}
}

func TestFileWithoutFileCoreIsNoop(t *testing.T) {
	t.Cleanup(func() { _ = logging.Close() })
	var console bytes.Buffer
	cfg := logging.ConsoleOnly(logging.DefaultConfig())
	cfg.Console = &console

	if err := logging.Setup(cfg); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	logging.File().Error("dropped")
	_ = logging.Sync()

	if console.Len() != 0 {
		t.Errorf("expected no output, got %q", console.String())
	}
}
