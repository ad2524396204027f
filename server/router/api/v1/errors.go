package v1

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/switchboard/server/internal/errors"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// echoStatusCodes maps router-level statuses to error codes.
var echoStatusCodes = map[int]apierrors.ErrorCode{
	http.StatusBadRequest:            apierrors.ErrCodeInvalidArgument,
	http.StatusNotFound:              apierrors.ErrCodeNotFound,
	http.StatusMethodNotAllowed:      apierrors.ErrCodeInvalidArgument,
	http.StatusRequestEntityTooLarge: apierrors.ErrCodeInvalidArgument,
	http.StatusTooManyRequests:       apierrors.ErrCodeRateLimitExceeded,
}

// HTTPErrorHandler renders every error as {error, code}. Full detail is
// logged; callers only see the safe message.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, resp := renderError(err)
	attrs := []any{
		"method", c.Request().Method,
		"path", c.Path(),
		"status", status,
		"code", resp.Code,
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", attrs...)
	} else {
		slog.Debug("request rejected", attrs...)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}

func renderError(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code, ok := echoStatusCodes[he.Code]
		if !ok {
			code = apierrors.ErrCodeInternal
		}
		msg := http.StatusText(he.Code)
		if he.Code < http.StatusInternalServerError {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, ErrorResponse{Error: msg, Code: string(code)}
	}

	apiErr := apierrors.FromError(err)
	return apiErr.HTTPStatus(), ErrorResponse{Error: apiErr.Message, Code: string(apiErr.Code)}
}
