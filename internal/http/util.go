package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"damage-assessment/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError 按错误类别映射 HTTP 状态码，消息原样透传
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), Fail(codeFor(err), err.Error()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfigurationIncomplete), errors.Is(err, domain.ErrInvalidConfiguration):
		return http.StatusPreconditionFailed
	case errors.Is(err, domain.ErrUnknownField), errors.Is(err, domain.ErrInvalidFieldValue):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreQueryFailed), errors.Is(err, domain.ErrStoreUpdateFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("empty request body")
	}
	return json.Unmarshal(body, out)
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
