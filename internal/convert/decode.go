package convert

import "fmt"

// Format names how raw message bytes are interpreted before conversion.
type Format string

const (
	FormatJSON   Format = "json"
	FormatString Format = "string"
	FormatBytes  Format = "bytes"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatString, FormatBytes:
		return f, nil
	}
	return "", fmt.Errorf("convert: unknown payload format %q", s)
}

// Decode maps raw message bytes to a schemaless payload. JSON is kept raw so
// that a malformed document fails at conversion time, per record.
func Decode(format Format, raw []byte) any {
	if raw == nil {
		return nil
	}
	switch format {
	case FormatJSON:
		return JSON(raw)
	case FormatString:
		return string(raw)
	default:
		return raw
	}
}
