package models

import "strings"

// Credentials for one WordPress/WooCommerce site. The WordPress user and
// password authenticate the identity check; the consumer key and secret
// authenticate the WooCommerce REST API.
type Credentials struct {
	SiteURL            string `json:"site_url" validate:"required,url"`
	Username           string `json:"username" validate:"required"`
	Password           string `json:"password"`
	ConsumerKey        string `json:"consumer_key" validate:"required"`
	ConsumerSecret     string `json:"consumer_secret" validate:"required"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify"`
}

func (c Credentials) BaseURL() string {
	return strings.TrimRight(c.SiteURL, "/")
}

// Redacted returns a copy safe to log or return over the API.
func (c Credentials) Redacted() Credentials {
	c.Password = mask(c.Password)
	c.ConsumerKey = mask(c.ConsumerKey)
	c.ConsumerSecret = mask(c.ConsumerSecret)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
