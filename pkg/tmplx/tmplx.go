package tmplx

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"
	"unicode/utf8"

	"github.com/spf13/cast"
)

var (
	ErrRenderTemplate = errors.New("tmplx: render error")
	ErrParseTemplate  = errors.New("tmplx: parse error")
)

type Template struct {
	tmpl *template.Template
}

type Options struct {
	validate ValidateFunc
	testData any
}

type Option func(*Options) error

type ValidateFunc func(*bytes.Buffer) error

var funcs = template.FuncMap{
	"truncate": truncate,
}

// WithValidate renders testData once at parse time and runs validateFn on it.
func WithValidate(testData any, validateFn ValidateFunc) Option {
	return func(t *Options) error {
		t.validate = validateFn
		t.testData = testData
		return nil
	}
}

func MustParse(name string, text string, opts ...Option) *Template {
	t, err := Parse(name, text, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func Parse(name string, text string, args ...Option) (*Template, error) {
	opts := &Options{}
	for _, arg := range args {
		if err := arg(opts); err != nil {
			return nil, err
		}
	}

	tmpl, err := template.New(name).
		Option("missingkey=zero").
		Funcs(funcs).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseTemplate, err)
	}

	t := &Template{
		tmpl: tmpl,
	}
	if opts.validate != nil {
		if err := t.validate(opts.testData, opts.validate); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Template) validate(data any, validate ValidateFunc) error {
	buf := new(bytes.Buffer)
	if err := t.tmpl.Execute(buf, data); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	if err := validate(buf); err != nil {
		return fmt.Errorf("validate template: %w", err)
	}
	return nil
}

func (t *Template) Render(data any) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := t.tmpl.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderTemplate, err)
	}
	return buf, nil
}

// RenderString is Render for callers that want the text directly.
func (t *Template) RenderString(data any) (string, error) {
	buf, err := t.Render(data)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// truncate cuts v to at most n runes. It never splits a multi-byte rune.
func truncate(n any, v any) string {
	s := cast.ToString(v)
	limit := cast.ToInt(n)
	if limit < 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
