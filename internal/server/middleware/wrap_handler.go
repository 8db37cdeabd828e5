package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime"

	"github.com/labstack/echo/v4"
)

var (
	echoContextType = reflect.TypeOf((*echo.Context)(nil)).Elem()
	errorType       = reflect.TypeOf((*error)(nil)).Elem()
)

// WrapHandler adapts a typed controller method to an echo handler. f must
// look like
//
//	func(echo.Context, Req) error
//	func(echo.Context, Req) (Res, error)
//
// where Req is a struct bound and validated by BindAndValidate. Results are
// rendered in the Response envelope; a *Response result is rendered as is.
// It panics on any other shape, so a bad route fails at startup.
func WrapHandler(f interface{}) echo.HandlerFunc {
	handler, err := wrapHandler(f)
	if err != nil {
		panic(err)
	}
	return handler
}

func wrapHandler(f interface{}) (echo.HandlerFunc, error) {
	fVal := reflect.ValueOf(f)
	if fVal.Kind() != reflect.Func {
		return nil, fmt.Errorf("wrap handler: %T is not a function", f)
	}
	fTyp := fVal.Type()
	name := runtime.FuncForPC(fVal.Pointer()).Name()
	if err := checkSignature(fTyp); err != nil {
		return nil, fmt.Errorf("wrap handler %s: %w", name, err)
	}

	reqType := fTyp.In(1)
	hasResult := fTyp.NumOut() == 2

	return func(c echo.Context) error {
		req := reflect.New(reqType)
		if err := BindAndValidate(c, req.Interface()); err != nil {
			return err
		}

		out := fVal.Call([]reflect.Value{reflect.ValueOf(c), req.Elem()})
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return errVal.Interface().(error)
		}
		if c.Response().Committed {
			return nil
		}

		var data interface{}
		if hasResult {
			data = out[0].Interface()
		}
		resp, ok := data.(*Response)
		if !ok || resp == nil {
			resp = OK(data)
		}
		if resp.Status == 0 {
			resp.Status = http.StatusOK
		}
		return c.JSON(resp.Status, resp)
	}, nil
}

func checkSignature(fTyp reflect.Type) error {
	if fTyp.NumIn() != 2 {
		return fmt.Errorf("want 2 arguments, got %d", fTyp.NumIn())
	}
	if !fTyp.In(0).Implements(echoContextType) {
		return fmt.Errorf("first argument must be echo.Context, got %s", fTyp.In(0))
	}
	if fTyp.In(1).Kind() != reflect.Struct {
		return fmt.Errorf("second argument must be a struct, got %s", fTyp.In(1))
	}
	numOut := fTyp.NumOut()
	if numOut < 1 || numOut > 2 {
		return fmt.Errorf("want 1 or 2 results, got %d", numOut)
	}
	if last := fTyp.Out(numOut - 1); last != errorType {
		return fmt.Errorf("last result must be error, got %s", last)
	}
	return nil
}
