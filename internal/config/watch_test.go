package config

import (
	"os"
	"testing"
	"time"
)

func TestWatchAuditVocabulary_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	watching, err := WatchAuditVocabulary("", func(AuditVocabularyConfig) {
		t.Error("onChange called without a config file")
	})
	if err != nil {
		t.Fatalf("WatchAuditVocabulary() error: %v", err)
	}
	if watching {
		t.Error("WatchAuditVocabulary() = true, want false when no config file exists")
	}
}

func TestWatchAuditVocabulary_Reload(t *testing.T) {
	path := writeTempConfig(t, "audit:\n  vocabulary:\n    sensitive: [password]\n")

	got := make(chan AuditVocabularyConfig, 4)
	watching, err := WatchAuditVocabulary(path, func(v AuditVocabularyConfig) {
		select {
		case got <- v:
		default:
		}
	})
	if err != nil {
		t.Fatalf("WatchAuditVocabulary() error: %v", err)
	}
	if !watching {
		t.Fatal("WatchAuditVocabulary() = false, want true")
	}

	// Give the watcher goroutine time to register the directory.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("audit:\n  vocabulary:\n    sensitive: [password, matricula]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	// A rewrite can surface as several events; wait for the one carrying the new content.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case v := <-got:
			if len(v.Sensitive) == 2 && v.Sensitive[1] == "matricula" {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for vocabulary reload")
		}
	}
}
