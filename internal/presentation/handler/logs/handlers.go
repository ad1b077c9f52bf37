package logs

import (
	"net/http"

	"github.com/storelink/relay/internal/infrastructure/json"
	"github.com/storelink/relay/internal/infrastructure/logbuf"
)

type Handler struct {
	buffer *logbuf.Buffer
}

func NewHandler(buffer *logbuf.Buffer) *Handler {
	return &Handler{
		buffer: buffer,
	}
}

// GetLogs returns the most recent log lines, oldest first.
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	lines := h.buffer.Lines()

	json.Write(w, http.StatusOK, logsResponse{
		Count: len(lines),
		Lines: lines,
	})
}
