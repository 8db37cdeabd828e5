package models

import "github.com/spf13/cast"

// ProductRecord is a product as emitted by the model, forwarded to the
// catalog untouched. Expected keys are name, regular_price, description,
// short_description and optionally categories ([{"id": n}]).
type ProductRecord map[string]any

func (p ProductRecord) Name() string {
	return cast.ToString(p["name"])
}
