package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/npyload/pkg/npy"
)

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType},
	})
}

// decodeStatus maps decoder failures to a status code and error type.
func decodeStatus(err error) (int, string) {
	switch {
	case errors.Is(err, npy.ErrMalformedHeader):
		return http.StatusBadRequest, "malformed_header"
	case errors.Is(err, npy.ErrMalformedMetadata):
		return http.StatusBadRequest, "malformed_metadata"
	case errors.Is(err, npy.ErrTruncatedPayload):
		return http.StatusUnprocessableEntity, "truncated_payload"
	case errors.Is(err, npy.ErrUnsupportedDescriptor):
		return http.StatusUnsupportedMediaType, "unsupported_descriptor"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
