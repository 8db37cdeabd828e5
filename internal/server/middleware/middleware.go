// Package middleware holds the echo plumbing shared by every route: binding,
// the JSON envelope, error rendering, request ids, logging and metrics.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Skipper reports whether a middleware should let the request through untouched.
type Skipper func(c echo.Context) bool

func DefaultSkipper(echo.Context) bool { return false }

// SkipPaths skips the listed request paths, e.g. health and metrics probes.
func SkipPaths(paths ...string) Skipper {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(c echo.Context) bool {
		_, ok := set[c.Request().URL.Path]
		return ok
	}
}

type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// Response is the envelope every successful API call is rendered in.
type Response struct {
	Status       int         `json:"-"`
	Success      bool        `json:"success"`
	Data         interface{} `json:"data,omitempty"`
	ErrorCode    string      `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

func OK(data interface{}) *Response {
	return &Response{Status: http.StatusOK, Success: true, Data: data}
}

func Created(data interface{}) *Response {
	return &Response{Status: http.StatusCreated, Success: true, Data: data}
}

// ResponseError is the envelope of a failed call. Handlers may return one
// directly to pick status and error code themselves.
type ResponseError struct {
	Status       int    `json:"-"`
	Err          error  `json:"-"`
	Success      bool   `json:"success"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func NewResponseError(status int, code string, err error) *ResponseError {
	re := &ResponseError{Status: status, ErrorCode: code, Err: err}
	if err != nil {
		re.ErrorMessage = err.Error()
	}
	return re
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("status: %d, code: %s; message: %+v", e.Status, e.ErrorCode, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}
