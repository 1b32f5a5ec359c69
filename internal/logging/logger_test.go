package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetState() {
	loggers = make(map[Category]*Logger)
	logsDir = ""
	workspace = ""
	cfg = LoggingConfigSnapshot{}
}

func writeConfig(t *testing.T, dir string, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".helix")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestAllCategoriesLogWhenDebugModeEnabled(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `{"logging": {"level": "debug", "debug_mode": true}}`)
	resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize logging: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryLexer, CategoryParser, CategoryValidator, CategoryIR,
		CategoryOptimizer, CategorySerializer, CategoryLoader, CategoryBundler,
		CategoryOperator, CategoryCalc, CategoryValidation, CategoryCache, CategoryCLI,
	}

	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("category %s should be enabled", cat)
		}
		l := For(cat)
		l.Info("info message for %s", cat)
		l.Debug("debug message for %s", cat)
		l.Warn("warn message for %s", cat)
		l.Error("error message for %s", cat)
	}

	logsPath := filepath.Join(tempDir, ".helix", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("failed to read logs dir: %v", err)
	}

	for _, cat := range categories {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("no log file found for category: %s", cat)
		}
	}
}

func TestDebugModeDisabledWritesNoLogs(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `{"logging": {"level": "info", "debug_mode": false}}`)
	resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize logging: %v", err)
	}
	if IsDebugMode() {
		t.Fatal("expected debug mode to be disabled")
	}

	l := For(CategoryOptimizer)
	l.Info("should not be written")

	logsPath := filepath.Join(tempDir, ".helix", "logs")
	if _, err := os.Stat(logsPath); !os.IsNotExist(err) {
		t.Errorf("expected no logs directory to be created, got err=%v", err)
	}
}

func TestCategoryToggleDisablesOneCategoryOnly(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `{"logging": {"level": "debug", "debug_mode": true, "categories": {"cache": false}}}`)
	resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize logging: %v", err)
	}

	if IsCategoryEnabled(CategoryCache) {
		t.Error("expected cache category to be disabled")
	}
	if !IsCategoryEnabled(CategoryOptimizer) {
		t.Error("expected optimizer category to remain enabled")
	}

	cacheLogger := For(CategoryCache)
	cacheLogger.Info("should be dropped")
	if cacheLogger.logger != nil {
		t.Error("expected disabled-category logger to be a no-op")
	}
}

func TestMissingConfigFileDefaultsToDisabled(t *testing.T) {
	tempDir := t.TempDir()
	resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize logging: %v", err)
	}
	if IsDebugMode() {
		t.Error("expected debug mode to default to disabled when no config file exists")
	}
}

func TestStructuredLogFieldsAppearInOutput(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `{"logging": {"level": "debug", "debug_mode": true}}`)
	resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize logging: %v", err)
	}

	l := For(CategoryOptimizer)
	l.StructuredLog("info", "pass complete", map[string]interface{}{"strings_deduped": 3})

	logsPath := filepath.Join(tempDir, ".helix", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("failed to read logs dir: %v", err)
	}
	var found bool
	for _, entry := range entries {
		if strings.Contains(entry.Name(), "optimizer.log") {
			content, _ := os.ReadFile(filepath.Join(logsPath, entry.Name()))
			if strings.Contains(string(content), "strings_deduped") {
				found = true
			}
		}
	}
	if !found {
		t.Error("expected structured field to appear in the optimizer log file")
	}
}
