package httpsrv

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cthoyt/robot-obo-tool/internal/version"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write JSON response", slog.Any("err", err))
	}
}

func appVersion() string {
	return version.Version
}
