package debank

import (
	"net/url"
	"strconv"
)

// Params holds the query parameters of one upstream request.
// Optional values that are unset are omitted entirely rather than sent empty.
type Params struct {
	values url.Values
}

// NewParams creates an empty parameter set.
func NewParams() *Params {
	return &Params{values: url.Values{}}
}

// Set adds a required string parameter.
func (p *Params) Set(key, value string) *Params {
	p.values.Set(key, value)
	return p
}

// SetString adds key only when value is non-empty.
func (p *Params) SetString(key, value string) *Params {
	if value != "" {
		p.values.Set(key, value)
	}
	return p
}

// SetInt adds key only when value is non-nil.
func (p *Params) SetInt(key string, value *int) *Params {
	if value != nil {
		p.values.Set(key, strconv.Itoa(*value))
	}
	return p
}

// SetInt64 adds key only when value is non-nil.
func (p *Params) SetInt64(key string, value *int64) *Params {
	if value != nil {
		p.values.Set(key, strconv.FormatInt(*value, 10))
	}
	return p
}

// SetBool adds key only when value is non-nil.
func (p *Params) SetBool(key string, value *bool) *Params {
	if value != nil {
		p.values.Set(key, strconv.FormatBool(*value))
	}
	return p
}

// Has reports whether key is present.
func (p *Params) Has(key string) bool {
	if p == nil {
		return false
	}
	return p.values.Has(key)
}

// Encode returns the URL-encoded query string, sorted by key.
func (p *Params) Encode() string {
	if p == nil {
		return ""
	}
	return p.values.Encode()
}
