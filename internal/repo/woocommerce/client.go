// Package woocommerce talks to the REST APIs of a WordPress site: the core
// API for the identity check and the WooCommerce API for product creation.
package woocommerce

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"github.com/tidwall/gjson"
)

const (
	identityPath = "/wp-json/wp/v2/users/me"
	productsPath = "/wp-json/wc/v3/products"

	DefaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultIdentityTimeout = 10 * time.Second
	DefaultTimeout         = 30 * time.Second
)

// Response is a raw product creation reply; interpreting it is up to the caller.
type Response struct {
	StatusCode int
	Body       string
}

func (r *Response) Created() bool {
	return r != nil && r.StatusCode == http.StatusCreated
}

// ProductID is the id of the created product, zero when the body has none.
func (r *Response) ProductID() int64 {
	if r == nil {
		return 0
	}
	return gjson.Get(r.Body, "id").Int()
}

// Message extracts the WordPress error message, if any.
func (r *Response) Message() string {
	if r == nil {
		return ""
	}
	return gjson.Get(r.Body, "message").String()
}

type Client interface {
	SiteURL() string
	// TestConnection reports whether the WordPress user credentials are
	// accepted. It is true only on HTTP 200; err explains a false result.
	TestConnection(ctx context.Context) (bool, error)
	// CreateProduct posts one record. A nil Response comes with an error
	// wrapping models.ErrTransport; any HTTP reply is returned as is.
	CreateProduct(ctx context.Context, record models.ProductRecord) (*Response, error)
}

type Options struct {
	UserAgent          string
	IdentityTimeout    time.Duration
	Timeout            time.Duration
	InsecureSkipVerify bool
}

type client struct {
	http  *resty.Client
	creds models.Credentials
	opts  Options
}

// Factory builds a client for one set of credentials.
type Factory func(creds models.Credentials) Client

// NewFactory applies configured defaults. TLS verification is skipped when
// either the credentials or the configuration opt in.
func NewFactory(cfg *config.Config) Factory {
	wc := cfg.WooCommerce
	return func(creds models.Credentials) Client {
		return NewClient(creds, Options{
			UserAgent:          wc.UserAgent,
			IdentityTimeout:    wc.IdentityTimeout,
			Timeout:            wc.Timeout,
			InsecureSkipVerify: wc.InsecureSkipVerify,
		})
	}
}

func NewClient(creds models.Credentials, opts Options) Client {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.IdentityTimeout <= 0 {
		opts.IdentityTimeout = DefaultIdentityTimeout
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	opts.InsecureSkipVerify = opts.InsecureSkipVerify || creds.InsecureSkipVerify

	c := resty.New().
		SetBaseURL(creds.BaseURL()).
		SetRetryCount(0).
		SetLogger(nopLogger{}).
		SetHeader("User-Agent", opts.UserAgent)
	if opts.InsecureSkipVerify {
		//nolint:gosec // explicit operator opt-in for self-signed shops
		c.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	c.JSONMarshal = json.Marshal
	c.JSONUnmarshal = json.Unmarshal

	return &client{
		http:  c,
		creds: creds,
		opts:  opts,
	}
}

func (c *client) SiteURL() string {
	return c.creds.BaseURL()
}

func (c *client) TestConnection(ctx context.Context) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("%w: identity check panicked: %v", models.ErrTransport, r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.opts.IdentityTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.creds.Username, c.creds.Password).
		SetHeader("Content-Type", "application/json").
		Get(identityPath)
	if err != nil {
		return false, fmt.Errorf("%w: identity check: %w", models.ErrTransport, err)
	}

	switch code := resp.StatusCode(); code {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, fmt.Errorf("%w: identity check returned %d", models.ErrUnauthorized, code)
	default:
		return false, fmt.Errorf("%w: identity check returned %d", models.ErrUpstreamStatus, code)
	}
}

func (c *client) CreateProduct(ctx context.Context, record models.ProductRecord) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"consumer_key":    c.creds.ConsumerKey,
			"consumer_secret": c.creds.ConsumerSecret,
		}).
		SetHeader("Content-Type", "application/json").
		SetBody(record).
		Post(productsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: create product: %w", models.ErrTransport, err)
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.String(),
	}, nil
}

type nopLogger struct{}

func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}
