// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package field provides loosely-typed JSON field values for decoding
// platform records whose field types are not reliable.
//
// A [Number] or [String] never fails to decode: a value of an unexpected
// JSON type is recorded as absent, so that a single bad record does not fail
// decoding of the document that contains it.
package field

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseNumber converts s to a number following the rules for numeric
// strings in JSON-producing clients: surrounding space is ignored, and a
// string that is empty after trimming is 0.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	// ParseFloat accepts spellings like "inf" and "nan" that are not numbers
	// on the wire.
	if c := s[len(s)-1]; c != '.' && (c < '0' || c > '9') {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// A Number is a JSON value that is expected to be numeric. A string holding
// a number is accepted as that number.
type Number struct {
	Value float64 // the numeric value, if OK
	Raw   string  // the literal text of a number, or the content of a string
	OK    bool    // whether the value was present and numeric
}

// UnmarshalJSON implements the json.Unmarshaler interface. It does not
// report an error for values of other types.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		n.Raw = s
		n.Value, n.OK = ParseNumber(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		n.Raw = string(data)
		n.Value, n.OK = ParseNumber(n.Raw)
	}
	return nil
}

// Int returns the value of n as an int, reporting false if n is absent or
// not an integer.
func (n Number) Int() (int, bool) {
	if !n.OK || math.Trunc(n.Value) != n.Value || math.Abs(n.Value) > math.MaxInt32 {
		return 0, false
	}
	return int(n.Value), true
}

// Float returns the value of n, or NaN if n is absent.
func (n Number) Float() float64 {
	if !n.OK {
		return math.NaN()
	}
	return n.Value
}

// Parse returns a Number holding the value of s as reported by
// [ParseNumber]. Unlike a decoded JSON string, an empty s is absent.
func Parse(s string) Number {
	if strings.TrimSpace(s) == "" {
		return Number{Raw: s}
	}
	v, ok := ParseNumber(s)
	return Number{Value: v, Raw: s, OK: ok}
}

// NumberOf returns a present Number with value v.
func NumberOf(v float64) Number {
	return Number{Value: v, Raw: strconv.FormatFloat(v, 'f', -1, 64), OK: true}
}

// A String is a JSON value that is expected to be a string. A number is
// accepted as its literal text.
type String struct {
	Value string
	OK    bool
}

// UnmarshalJSON implements the json.Unmarshaler interface. It does not
// report an error for values of other types.
func (s *String) UnmarshalJSON(data []byte) error {
	*s = String{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &s.Value); err == nil {
			s.OK = true
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		s.Value, s.OK = string(data), true
	}
	return nil
}

// Truthy reports whether s is present and non-empty.
func (s String) Truthy() bool { return s.OK && s.Value != "" }

// Array decodes data as a JSON array and returns its undecoded elements.
// It reports an error if data is not valid JSON or is not an array.
func Array(data []byte) ([]json.RawMessage, error) {
	var elts []json.RawMessage
	if err := json.Unmarshal(data, &elts); err != nil {
		return nil, err
	} else if elts == nil {
		return nil, fmt.Errorf("expected array, got %.16q", bytes.TrimSpace(data))
	}
	return elts, nil
}

// Decode decodes a single record into v, reporting whether it succeeded.
// A JSON null is not a record and reports false.
func Decode(data json.RawMessage, v any) bool {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return false
	}
	return json.Unmarshal(data, v) == nil
}
