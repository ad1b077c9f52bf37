package configs

import "sync/atomic"

// BackendSettings is the runtime-mutable slice of the configuration: the
// outbound client reads the current values at call time, so rotating the
// credential or base URL takes effect on the next request without a restart.
type BackendSettings struct {
	BaseURL      string `json:"baseUrl"`
	Token        string `json:"token"`
	MessagesPath string `json:"messagesPath"`
}

type SettingsStore struct {
	v atomic.Value
}

func NewSettingsStore(initial BackendSettings) *SettingsStore {
	s := &SettingsStore{}
	s.v.Store(initial)
	return s
}

func (s *SettingsStore) Current() BackendSettings {
	return s.v.Load().(BackendSettings)
}

func (s *SettingsStore) Swap(next BackendSettings) {
	s.v.Store(next)
}
