package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError turns a non-2xx response into an application error,
// keeping the downstream message when the body is a {"error":{...}} envelope.
// It consumes and closes the body.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apperrors.Network(service, fmt.Errorf("status %d, unreadable body: %w", resp.StatusCode, err))
	}

	message := http.StatusText(resp.StatusCode)
	var env errorEnvelope
	if json.Unmarshal(raw, &env) == nil && env.Error != nil && env.Error.Message != "" {
		message = env.Error.Message
	} else if len(raw) > 0 {
		message = string(raw)
	}
	qualified := fmt.Sprintf("%s: %s", service, message)

	switch status := resp.StatusCode; {
	case status == http.StatusNotFound:
		return apperrors.NotFound(service, message)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.Validation(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status == http.StatusTooManyRequests, status >= 500:
		return apperrors.Network(service, fmt.Errorf("status %d: %s", status, message))
	default:
		return &apperrors.AppError{Code: "UPSTREAM_ERROR", Message: qualified, Status: http.StatusBadGateway}
	}
}
