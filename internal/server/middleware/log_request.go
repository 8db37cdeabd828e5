package middleware

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/ctxval"
	"github.com/tidwall/gjson"
)

const maskedValue = "***"

// DefaultSensitiveFields are the credential keys of PUT /credentials.
var DefaultSensitiveFields = []string{"password", "consumer_key", "consumer_secret"}

// LogRequestConfig controls the one-line-per-request access log.
type LogRequestConfig struct {
	Logger  Logger
	Skipper Skipper
	// RequestBody and ResponseBody decide per request whether JSON bodies
	// are logged. Both default to on.
	RequestBody  func(c echo.Context) bool
	ResponseBody func(c echo.Context) bool
	// SensitiveFields are top-level request body keys logged as "***".
	SensitiveFields []string
	// MaxBodyBytes caps a logged body; longer ones are cut and logged as text.
	MaxBodyBytes int
	KeyAndValues func(c echo.Context) []interface{}
}

type bodyDumpWriter struct {
	io.Writer
	http.ResponseWriter
}

// LogRequest logs method, route, status, latency and JSON bodies of every
// request, plus whatever KeyAndValues adds. 5xx log at error, 4xx at warn.
// The request context is wrapped with ctxval so handlers can annotate it.
func LogRequest(conf LogRequestConfig) echo.MiddlewareFunc {
	if conf.Logger == nil {
		panic("LogRequest: Logger is required")
	}
	always := func(echo.Context) bool { return true }
	if conf.Skipper == nil {
		conf.Skipper = DefaultSkipper
	}
	if conf.RequestBody == nil {
		conf.RequestBody = always
	}
	if conf.ResponseBody == nil {
		conf.ResponseBody = always
	}
	if conf.SensitiveFields == nil {
		conf.SensitiveFields = DefaultSensitiveFields
	}
	if conf.MaxBodyBytes <= 0 {
		conf.MaxBodyBytes = 4 << 10
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if conf.Skipper(c) {
				return next(c)
			}

			start := time.Now()
			c.SetRequest(c.Request().WithContext(ctxval.Wrap(c.Request().Context())))
			req := c.Request()
			res := c.Response()

			var reqBody []byte
			logReqBody := conf.RequestBody(c) && isJSON(req.Header.Get(echo.HeaderContentType))
			if logReqBody && req.Body != nil {
				reqBody, _ = io.ReadAll(req.Body)
				req.Body = io.NopCloser(bytes.NewReader(reqBody))
			}
			var resBuf bytes.Buffer
			logResBody := conf.ResponseBody(c)
			if logResBody {
				res.Writer = &bodyDumpWriter{Writer: io.MultiWriter(res.Writer, &resBuf), ResponseWriter: res.Writer}
			}

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			args := make([]interface{}, 0, 24)
			args = append(args,
				"status", res.Status,
				"method", req.Method,
				"uri", req.RequestURI,
				"route", c.Path(),
				"latency_ms", time.Since(start).Milliseconds(),
				"real_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
				"request_id", GetRequestID(c),
			)
			if sessionID := c.Param("id"); sessionID != "" {
				args = append(args, "session_id", sessionID)
			}
			if conf.KeyAndValues != nil {
				args = append(args, conf.KeyAndValues(c)...)
			}
			if logReqBody && len(reqBody) > 0 {
				args = append(args, "request_body", bodyField(maskFields(reqBody, conf.SensitiveFields), conf.MaxBodyBytes))
			}
			if logResBody && isJSON(res.Header().Get(echo.HeaderContentType)) && resBuf.Len() > 0 {
				args = append(args, "response_body", bodyField(resBuf.Bytes(), conf.MaxBodyBytes))
			}

			switch {
			case res.Status >= http.StatusInternalServerError:
				if err != nil {
					args = append(args, "error", err.Error())
				}
				conf.Logger.Errorw("request", args...)
			case res.Status >= http.StatusBadRequest:
				conf.Logger.Warnw("request", args...)
			default:
				conf.Logger.Infow("request", args...)
			}
			return err
		}
	}
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, echo.MIMEApplicationJSON)
}

// maskFields replaces the values of keys at the top level of a JSON object.
// Anything that is not an object comes back unchanged.
func maskFields(body []byte, keys []string) []byte {
	if len(keys) == 0 || !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return body
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return body
	}
	masked := false
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			obj[k] = json.RawMessage(`"` + maskedValue + `"`)
			masked = true
		}
	}
	if !masked {
		return body
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return body
	}
	return out
}

// bodyField keeps valid, small JSON as raw JSON in the log entry; anything
// else becomes a (possibly cut) string.
func bodyField(body []byte, limit int) interface{} {
	if len(body) > limit {
		return string(body[:limit]) + "...(truncated)"
	}
	if !gjson.ValidBytes(body) {
		return string(body)
	}
	return json.RawMessage(body)
}

func (w *bodyDumpWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyDumpWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *bodyDumpWriter) Flush() {
	w.ResponseWriter.(http.Flusher).Flush()
}

func (w *bodyDumpWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}
