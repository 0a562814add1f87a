// Package catalog decodes newline-delimited product and listing catalogs.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotObject is returned when a non-empty line decodes to something other than a JSON object
	ErrNotObject = errors.New("record is not a JSON object")

	// ErrMissingField is returned when a product lacks manufacturer or model
	ErrMissingField = errors.New("required field missing")

	// ErrFieldType is returned when a product's manufacturer or model is not a string
	ErrFieldType = errors.New("field is not a string")
)

// Product is a canonical catalog entry
type Product struct {
	ProductName  string `json:"product_name"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
}

// Listing is a marketplace entry. Raw holds the compacted original object
// and is what gets written back out, so passthrough fields keep their order.
type Listing struct {
	Title string
	Raw   json.RawMessage
}

// MarshalJSON emits the original record unchanged
func (l Listing) MarshalJSON() ([]byte, error) {
	if len(l.Raw) == 0 {
		return json.Marshal(struct {
			Title string `json:"title"`
		}{l.Title})
	}
	return l.Raw, nil
}

// RecordError reports a line that failed to decode. Any RecordError aborts the whole run.
type RecordError struct {
	Source string
	Line   int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s line %d: %v", e.Source, e.Line, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Parse calls fn with the fields of every non-empty line of raw. A line is
// empty only when nothing but an optional trailing "\r" is on it; every other
// line must be a JSON object, whitespace-only lines included.
func Parse(source string, raw []byte, fn func(line int, fields map[string]json.RawMessage, obj []byte) error) error {
	line := 0
	for len(raw) > 0 {
		line++
		var current []byte
		if i := bytes.IndexByte(raw, '\n'); i >= 0 {
			current, raw = raw[:i], raw[i+1:]
		} else {
			current, raw = raw, nil
		}

		current = bytes.TrimSuffix(current, []byte("\r"))
		if len(current) == 0 {
			continue
		}

		fields, err := decodeObject(current)
		if err != nil {
			return &RecordError{Source: source, Line: line, Err: err}
		}
		if err := fn(line, fields, current); err != nil {
			return &RecordError{Source: source, Line: line, Err: err}
		}
	}
	return nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotObject
		}
		return nil, err
	}
	if fields == nil {
		return nil, ErrNotObject
	}
	return fields, nil
}

// requiredString reads a field that must be present and hold a JSON string.
// Keys are matched exactly; "Model" is not "model".
func requiredString(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s", ErrFieldType, key)
	}
	return s, nil
}

// ParseProducts decodes a products catalog
func ParseProducts(raw []byte) ([]Product, error) {
	products := make([]Product, 0)
	err := Parse("products", raw, func(_ int, fields map[string]json.RawMessage, _ []byte) error {
		manufacturer, err := requiredString(fields, "manufacturer")
		if err != nil {
			return err
		}
		model, err := requiredString(fields, "model")
		if err != nil {
			return err
		}
		name, err := fieldText(fields["product_name"])
		if err != nil {
			return err
		}

		products = append(products, Product{
			ProductName:  name,
			Manufacturer: manufacturer,
			Model:        model,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ParseListings decodes a listings catalog
func ParseListings(raw []byte) ([]Listing, error) {
	listings := make([]Listing, 0)
	err := Parse("listings", raw, func(_ int, fields map[string]json.RawMessage, obj []byte) error {
		title, err := fieldText(fields["title"])
		if err != nil {
			return err
		}

		var compact bytes.Buffer
		if err := json.Compact(&compact, obj); err != nil {
			return err
		}

		listings = append(listings, Listing{Title: title, Raw: compact.Bytes()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// fieldText returns string values as is, absent/null as empty and any other value as its JSON text
func fieldText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(raw), nil
}
