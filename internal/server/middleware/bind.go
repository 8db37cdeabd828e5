package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/cstockton/go-conv"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// BindAndValidate fills req from path params, query, JSON body and
// `header:"..."` tagged fields, then runs the echo validator on it.
// Failures come back as a 400 ResponseError.
func BindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code != http.StatusBadRequest {
			return err
		}
		return NewResponseError(http.StatusBadRequest, "invalid_body", unwrapBindError(err))
	}

	if err := bindHeader(c.Request().Header, req); err != nil {
		return NewResponseError(http.StatusBadRequest, "invalid_header", err)
	}

	if err := c.Validate(req); err != nil {
		return NewResponseError(http.StatusBadRequest, "invalid_input", describeValidation(err))
	}

	return nil
}

func unwrapBindError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Internal != nil {
		return he.Internal
	}
	return err
}

// describeValidation turns validator output into "field: rule" pairs.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fe.Field()+": "+rule)
	}
	return errors.New(strings.Join(parts, "; "))
}

// bindHeader sets each `header:"name"` field of the struct dst points to.
// Missing headers leave the zero value.
func bindHeader(header http.Header, dst interface{}) error {
	ptr := reflect.ValueOf(dst)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind header: want pointer to struct, got %T", dst)
	}

	v := ptr.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := sf.Tag.Get("header")
		if name == "" || name == "-" {
			continue
		}
		raw := header.Get(name)
		if raw == "" {
			continue
		}
		if err := conv.Infer(v.Field(i), raw); err != nil {
			return fmt.Errorf("header %s: cannot parse %q as %s: %w", name, raw, sf.Type, err)
		}
	}
	return nil
}
