package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// 未配置目录时默认落在工作目录下的 logs/
func TestLogFilePathDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := logFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}
	if filepath.Base(got) != defaultLogFile {
		t.Fatalf("filename = %s, want %s", filepath.Base(got), defaultLogFile)
	}
	if filepath.Base(filepath.Dir(got)) != defaultLogDir {
		t.Fatalf("dir = %s, want %s", filepath.Dir(got), defaultLogDir)
	}
	if _, err := os.Stat(filepath.Dir(got)); err != nil {
		t.Fatalf("log dir should exist: %v", err)
	}
}

func TestNewReleaseWritesToFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "release.log"})
	log.Info("release-log-entry")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "release.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	if !strings.Contains(string(content), "release-log-entry") {
		t.Fatalf("log content = %s, want entry present", content)
	}
}

func TestNewDebugStaysOnConsole(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Info("debug-log-entry")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create a log file")
	}
}

func TestPositiveOr(t *testing.T) {
	if got := positiveOr(0, 7); got != 7 {
		t.Fatalf("positiveOr(0, 7) = %d, want 7", got)
	}
	if got := positiveOr(-3, 7); got != 7 {
		t.Fatalf("positiveOr(-3, 7) = %d, want 7", got)
	}
	if got := positiveOr(12, 7); got != 12 {
		t.Fatalf("positiveOr(12, 7) = %d, want 12", got)
	}
}
