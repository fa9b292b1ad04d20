package worker

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"yolo-webcam-go/internal/services/frameprocessing"
)

// SettingsStore holds the live annotation settings
type SettingsStore interface {
	Settings() frameprocessing.Settings
	UpdateSettings(s frameprocessing.Settings) error
}

// SettingsHandler applies JSON settings updates received on NATS.
// Fields missing from a message keep their current value.
func SettingsHandler(store SettingsStore) func([]byte) {
	return func(data []byte) {
		s := store.Settings()
		if err := json.Unmarshal(data, &s); err != nil {
			log.Warn().Err(err).Msg("Ignoring malformed settings update")
			return
		}
		if err := store.UpdateSettings(s); err != nil {
			log.Warn().Err(err).Msg("Rejected settings update")
		}
	}
}
