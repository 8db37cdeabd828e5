// Package extract pulls the machine-readable product payload out of a model
// reply. The payload is a JSON array enclosed by <JSON_START> and <JSON_END>.
package extract

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"github.com/tidwall/gjson"
)

const (
	StartMarker = "<JSON_START>"
	EndMarker   = "<JSON_END>"

	// FailureNotice is appended to replies whose payload could not be parsed.
	FailureNotice = "\n[System Error: Failed to parse product data]"
)

type Status int

const (
	NotFound Status = iota
	Found
	Malformed
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Malformed:
		return "malformed"
	default:
		return "not_found"
	}
}

type Result struct {
	Status Status
	// Reply is the input, untouched.
	Reply string
	// Prefix is the text before the start marker, Suffix the text after the
	// end marker. Both are empty when no segment was found.
	Prefix   string
	Suffix   string
	Payload  string
	Products []models.ProductRecord
	Err      error
}

// Clean is the text shown to the operator. Text following the end marker is
// dropped; see CleanWithSuffix.
func (r Result) Clean() string {
	switch r.Status {
	case Found:
		return r.Prefix
	case Malformed:
		return r.Reply + FailureNotice
	default:
		return r.Reply
	}
}

// CleanWithSuffix is Clean, but keeps any explanation the model wrote after
// the payload.
func (r Result) CleanWithSuffix() string {
	if r.Status != Found {
		return r.Clean()
	}
	suffix := strings.TrimLeft(r.Suffix, "\r\n")
	if strings.TrimSpace(suffix) == "" {
		return r.Prefix
	}
	return r.Prefix + suffix
}

// Extract scans for the first start marker and the first end marker after it.
// Only one segment is ever extracted.
func Extract(reply string) Result {
	res := Result{Status: NotFound, Reply: reply}

	start := strings.Index(reply, StartMarker)
	if start < 0 {
		return res
	}
	bodyStart := start + len(StartMarker)
	end := strings.Index(reply[bodyStart:], EndMarker)
	if end < 0 {
		return res
	}
	end += bodyStart

	res.Prefix = reply[:start]
	res.Payload = reply[bodyStart:end]
	res.Suffix = reply[end+len(EndMarker):]

	products, err := ParseProducts(res.Payload)
	if err != nil {
		res.Status = Malformed
		res.Err = err
		return res
	}
	res.Status = Found
	res.Products = products
	return res
}

// ParseProducts decodes a JSON array of objects.
func ParseProducts(payload string) ([]models.ProductRecord, error) {
	payload = strings.TrimSpace(payload)
	if !gjson.Valid(payload) {
		return nil, fmt.Errorf("%w: invalid json", models.ErrMalformedReply)
	}
	if !gjson.Parse(payload).IsArray() {
		return nil, fmt.Errorf("%w: payload is not an array", models.ErrMalformedReply)
	}

	var products []models.ProductRecord
	if err := json.Unmarshal([]byte(payload), &products); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrMalformedReply, err)
	}
	for i, p := range products {
		if p == nil {
			return nil, fmt.Errorf("%w: element %d is not an object", models.ErrMalformedReply, i)
		}
	}
	return products, nil
}
