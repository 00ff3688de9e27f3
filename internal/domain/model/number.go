package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Finite returns v and true when v is a real number, or 0 and false for NaN and infinities.
func Finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FiniteOr returns v when it is finite and def otherwise.
func FiniteOr(v, def float64) float64 {
	if f, ok := Finite(v); ok {
		return f
	}
	return def
}

// ParseNumber decodes a loosely typed JSON value into a finite number.
//
// Numbers, numeric strings, booleans and null are accepted (an empty string
// and null read as 0, true as 1). Objects, arrays, malformed text and
// non-finite results report false.
func ParseNumber(raw json.RawMessage) (float64, bool) {
	s := bytes.TrimSpace(raw)
	if len(s) == 0 {
		return 0, false
	}
	switch s[0] {
	case 'n':
		if string(s) == "null" {
			return 0, true
		}
		return 0, false
	case 't':
		return 1, string(s) == "true"
	case 'f':
		return 0, string(s) == "false"
	case '"':
		var str string
		if err := json.Unmarshal(s, &str); err != nil {
			return 0, false
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return 0, false
		}
		return Finite(f)
	case '{', '[':
		return 0, false
	default:
		var f float64
		if err := json.Unmarshal(s, &f); err != nil {
			return 0, false
		}
		return Finite(f)
	}
}

// parseString reads a JSON string or number as text. Anything else is "".
func parseString(raw json.RawMessage) string {
	s := bytes.TrimSpace(raw)
	if len(s) == 0 {
		return ""
	}
	switch s[0] {
	case '"':
		var str string
		if err := json.Unmarshal(s, &str); err != nil {
			return ""
		}
		return str
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(s)
	default:
		return ""
	}
}
