package middleware

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator plugs go-playground/validator into echo. Field names in errors
// follow the json/param/query/header tag so they match what clients sent.
type Validator struct {
	validate *validator.Validate
}

var nameTags = []string{"json", "param", "query", "header"}

var customValidations = map[string]validator.Func{
	"site_url": isSiteURL,
}

func NewValidator() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range nameTags {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	for tag, fn := range customValidations {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return &Validator{validate: validate}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// isSiteURL accepts the root of a WordPress site: an absolute http(s) URL
// with a host and no query or fragment. A path is allowed for sites living
// in a subdirectory.
func isSiteURL(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && u.RawQuery == "" && u.Fragment == "" && u.User == nil
}
