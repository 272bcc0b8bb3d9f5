package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/cycler/internal/curve"
)

// marshalStyle converts a point style to JSON TEXT. Unset attributes are
// omitted, so an empty style is "{}".
func marshalStyle(s curve.Style) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("marshal style: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalStyle parses JSON TEXT into a style.
func unmarshalStyle(data string) (curve.Style, error) {
	var s curve.Style
	if data == "" || data == "{}" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return curve.Style{}, fmt.Errorf("unmarshal style: %w", err)
	}
	return s, nil
}
