package config

import (
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// WatchAuditVocabulary watches the config file and calls onChange with the
// audit vocabulary every time the file is rewritten with a valid configuration.
// A rewrite that fails validation is logged and ignored, leaving the previous
// vocabulary in force.
//
// The returned bool is false when no config file is in use, in which case there
// is nothing to watch and onChange is never called.
func WatchAuditVocabulary(configPath string, onChange func(AuditVocabularyConfig)) (bool, error) {
	v, err := newViper(configPath)
	if err != nil {
		return false, err
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		return false, fmt.Errorf("error reading config file: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			slog.Warn("config reload rejected", "file", e.Name, "error", err)
			return
		}
		slog.Info("audit vocabulary reloaded", "file", e.Name)
		onChange(cfg.Audit.Vocabulary)
	})
	v.WatchConfig()

	return true, nil
}
