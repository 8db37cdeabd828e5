package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestBindHeader(t *testing.T) {
	type args struct {
		header map[string]string
		out    interface{}
	}

	type normalCase struct {
		App     string `header:"app"`
		Service string `header:"service"`

		Non   string `header:"-"`
		Empty bool
	}

	type complexCase struct {
		Nine              int64   `header:"nine"`
		ThousandAndSeven  uint64  `header:"thousand-and-seven"`
		NegativeThirtyTwo int64   `header:"negative-thirty-two"`
		HundredPointSix   float32 `header:"hundred-point-six"`
		Rose              string  `header:"rose"`
	}

	tests := []struct {
		name    string
		args    args
		want    interface{}
		wantErr error
	}{
		{
			name: "normal bind header",
			args: args{
				header: map[string]string{
					"app":     "shop-assistant",
					"service": "uploader",
					"non":     "non",
					"empty":   "empty",
				},
				out: new(normalCase),
			},
			want: &normalCase{
				App:     "shop-assistant",
				Service: "uploader",
				Non:     "",
				Empty:   false,
			},
			wantErr: nil,
		},
		{
			name: "complex bind header",
			args: args{
				header: map[string]string{
					"nine":                "9",
					"thousand-and-seven":  "1007",
					"negative-thirty-two": "-32",
					"hundred-point-six":   "100.6",
					"rose":                "rose",
				},
				out: new(complexCase),
			},
			want: &complexCase{
				Nine:              9,
				ThousandAndSeven:  1007,
				NegativeThirtyTwo: -32,
				HundredPointSix:   100.6,
				Rose:              "rose",
			},
			wantErr: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			for k, v := range tt.args.header {
				header.Set(k, v)
			}
			err := bindHeader(header, tt.args.out)
			assert.EqualValues(t, err, tt.wantErr)
			assert.EqualValues(t, tt.want, tt.args.out)
		})
	}
}

func TestBindAndValidate(t *testing.T) {
	type request struct {
		ID      string `param:"id" validate:"required"`
		Message string `json:"message" validate:"required"`
		Client  string `header:"x-client"`
	}

	e := echo.New()
	e.Validator = NewValidator()

	t.Run("binds body, params and headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/messages", strings.NewReader(`{"message":"hi"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("x-client", "cli")
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues("abc")

		var out request
		assert.NoError(t, BindAndValidate(c, &out))
		assert.Equal(t, request{ID: "abc", Message: "hi", Client: "cli"}, out)
	})

	t.Run("rejects invalid request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/messages", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues("abc")

		var out request
		err := BindAndValidate(c, &out)
		var re *ResponseError
		if assert.ErrorAs(t, err, &re) {
			assert.Equal(t, http.StatusBadRequest, re.Status)
			assert.Equal(t, "invalid_input", re.ErrorCode)
			assert.Equal(t, "message: required", re.ErrorMessage)
		}
	})

	t.Run("rejects broken json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/messages", strings.NewReader(`{"message":`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues("abc")

		var out request
		var re *ResponseError
		if assert.ErrorAs(t, BindAndValidate(c, &out), &re) {
			assert.Equal(t, http.StatusBadRequest, re.Status)
			assert.Equal(t, "invalid_body", re.ErrorCode)
		}
	})
}

func TestBindHeader_Errors(t *testing.T) {
	type numeric struct {
		Count int `header:"x-count"`
	}
	h := http.Header{}
	h.Set("x-count", "many")
	err := bindHeader(h, new(numeric))
	assert.ErrorContains(t, err, "x-count")

	assert.Error(t, bindHeader(h, numeric{}))
}
