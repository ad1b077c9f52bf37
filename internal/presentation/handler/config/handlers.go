package config

import (
	"errors"
	"net/http"
	"strings"

	"github.com/storelink/relay/internal/infrastructure/backend"
	"github.com/storelink/relay/internal/infrastructure/configs"
	"github.com/storelink/relay/internal/infrastructure/json"
	"github.com/storelink/relay/internal/infrastructure/logging"
)

// Handler exposes the runtime config panel: the backend base URL and
// credential can be rotated without a restart, taking effect on the next
// outbound call.
type Handler struct {
	settings *configs.SettingsStore
	logger   logging.Logger
}

func NewHandler(settings *configs.SettingsStore, logger logging.Logger) *Handler {
	return &Handler{
		settings: settings,
		logger:   logger,
	}
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	current := h.settings.Current()

	json.Write(w, http.StatusOK, configResponse{
		BaseURL:      current.BaseURL,
		Token:        maskToken(current.Token),
		MessagesPath: current.MessagesPath,
	})
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req updateConfigRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	current := h.settings.Current()

	if req.BaseURL != nil {
		trimmed := strings.TrimRight(strings.TrimSpace(*req.BaseURL), "/")
		if trimmed == "" {
			json.WriteValidationError(w, errors.New("baseUrl cannot be empty"))
			return
		}
		current.BaseURL = trimmed
	}

	if req.Token != nil {
		current.Token = *req.Token
	}

	if req.MessagesPath != nil {
		switch *req.MessagesPath {
		case backend.MessagesPathRooms, backend.MessagesPathLegacy:
			current.MessagesPath = *req.MessagesPath
		default:
			json.WriteValidationError(w, errors.New("messagesPath must be \"rooms\" or \"legacy\""))
			return
		}
	}

	h.settings.Swap(current)

	h.logger.Info(logging.General, logging.Startup, "backend settings updated", map[logging.ExtraKey]any{
		"baseUrl":      current.BaseURL,
		"messagesPath": current.MessagesPath,
	})

	json.Write(w, http.StatusOK, configResponse{
		BaseURL:      current.BaseURL,
		Token:        maskToken(current.Token),
		MessagesPath: current.MessagesPath,
	})
}

func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
