// Package emit serializes match results as newline-delimited JSON.
package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dsjohal14/listmatch/internal/scope/search"
)

// LineSeparator joins emitted records. No separator follows the last record.
const LineSeparator = "\n"

// Line encodes a single match without HTML escaping and without a trailing newline
func Line(m search.Match) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode match %q: %w", m.ProductName, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Encode joins the encoded matches in order
func Encode(matches []search.Match) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, matches); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the encoded matches to w
func Write(w io.Writer, matches []search.Match) error {
	for i := range matches {
		line, err := Line(matches[i])
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(w, LineSeparator); err != nil {
				return fmt.Errorf("failed to write separator: %w", err)
			}
		}
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("failed to write match %d: %w", i, err)
		}
	}
	return nil
}
