package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesToRotatingFile(t *testing.T) {
	prevOut, prevFlags := log.Writer(), log.Flags()
	defer func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	}()

	path := filepath.Join(t.TempDir(), "relay.log")
	_, closer := Setup(Options{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	New("[test] ").Printf("hello from %s", "relay")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(b), "[test] ") || !strings.Contains(string(b), "hello from relay") {
		t.Fatalf("log file content = %q", b)
	}
}

func TestSetupWithoutFile(t *testing.T) {
	prevOut, prevFlags := log.Writer(), log.Flags()
	defer func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	}()

	w, closer := Setup(Options{})
	if w != os.Stdout {
		t.Fatalf("writer = %T, want os.Stdout", w)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
