package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorHandler return custom http error handler.
func ErrorHandler(log Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}

		resp := &ResponseError{
			Status:  http.StatusInternalServerError,
			Success: false,
			Err:     err,
		}

		var he *echo.HTTPError
		var re *ResponseError
		switch {
		case errors.As(err, &re):
			resp = re
		case errors.As(err, &he):
			resp.Status = he.Code
			resp.ErrorMessage = errorMessage(he.Message)
		default:
			if code, ok := statusOf(err); ok {
				resp.Status = code
				resp.ErrorCode = errorCode(err)
				resp.ErrorMessage = err.Error()
			}
			// detect canceled request error
			if errors.Is(err, context.Canceled) && c.Request().Context().Err() == context.Canceled {
				resp.Status = 499
			}
		}

		if resp.Status == http.StatusNotFound && isNotFoundHandler(c.Handler()) {
			resp.ErrorMessage = "no route matched"
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(resp.Status)
		} else {
			err = c.JSON(resp.Status, resp)
		}
		if err != nil {
			log.Errorw("could not response", "code", resp.Status, "response_body", resp)
		}
	}
}

func statusOf(err error) (int, bool) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, true
	case errors.Is(err, models.ErrNoCredentials), errors.Is(err, models.ErrNothingStaged):
		return http.StatusConflict, true
	}
	if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
		return http.StatusNotFound, true
	}
	return 0, false
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, models.ErrNoCredentials):
		return "no_credentials"
	case errors.Is(err, models.ErrNothingStaged):
		return "nothing_staged"
	}
	return ""
}

func errorMessage(msg any) string {
	if s, ok := msg.(string); ok {
		return s
	}
	if err, ok := msg.(error); ok {
		return err.Error()
	}
	return http.StatusText(http.StatusInternalServerError)
}
