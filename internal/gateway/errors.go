package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

const maxErrorBody = 1 << 20

const sessionExpiredMessage = "your session has expired, please log in again"

// backendErrorBody covers the error shapes the backend is known to send:
//
//	{"error": "message"}
//	{"error": {"code": "...", "message": "..."}}
//	{"message": "message"}
type backendErrorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// backendMessage extracts the human-readable message from an error body.
// It returns "" when the body carries none.
func backendMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	var parsed backendErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}

	if len(parsed.Error) > 0 {
		var text string
		if json.Unmarshal(parsed.Error, &text) == nil && text != "" {
			return text
		}
		var structured struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(parsed.Error, &structured) == nil && structured.Message != "" {
			return structured.Message
		}
	}
	return parsed.Message
}

// classifyStatus maps a non-2xx response to an AppError. 401 is handled by
// the caller because it also tears the session down.
func classifyStatus(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apperrors.Server(resp.StatusCode,
			fmt.Sprintf("backend returned status %d", resp.StatusCode), err)
	}
	msg := backendMessage(body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if msg == "" {
			msg = sessionExpiredMessage
		}
		return apperrors.Auth(msg)
	case http.StatusNotFound:
		if msg == "" {
			msg = "the requested resource was not found"
		}
		return apperrors.NotFoundMessage(msg)
	default:
		if msg == "" {
			msg = fmt.Sprintf("backend returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return apperrors.Server(resp.StatusCode, msg, nil)
	}
}
