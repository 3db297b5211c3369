package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/comfortlab/roomsense/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error
// response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	if code := apperrors.CodeOf(err); code != "" {
		return &HTTPError{
			Status:  statusForCode(code),
			Code:    code,
			Message: err.Error(),
			Err:     err,
		}
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

// statusForCode maps domain error codes onto HTTP statuses. The forecast
// codes only reach here when a caller requests a forecast explicitly;
// within composite responses they merely suppress the forecast block.
func statusForCode(code string) int {
	switch code {
	case "invalid_value":
		return http.StatusBadRequest
	case "insufficient_data", "degenerate_fit":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
