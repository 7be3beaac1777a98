package audit

import (
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
)

// WatchVocabulary reloads the interceptor's vocabulary whenever the config
// file at configPath is rewritten with a valid configuration. It reports
// whether a config file is being watched.
func (i *Interceptor) WatchVocabulary(configPath string) (bool, error) {
	return config.WatchAuditVocabulary(configPath, func(v config.AuditVocabularyConfig) {
		i.SetVocabulary(VocabularyFromConfig(v))
	})
}
