// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package danmaku

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"
)

// MaxTime is the exclusive upper bound on a valid comment time, in seconds.
const MaxTime = 360000

// ErrMalformed is reported (wrapped) by parsers when an input document cannot
// be decoded at the top level. Problems with individual records are never
// reported as errors.
var ErrMalformed = errors.New("malformed document")

// Malformedf returns an error wrapping [ErrMalformed] with a formatted
// description of the problem.
func Malformedf(msg string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(msg, args...))
}

// Malformed returns an error wrapping both [ErrMalformed] and err, labelled
// with the name of the format being parsed.
func Malformed(format string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMalformed, format, err)
}

// Mode is the canonical display placement of a comment.
type Mode byte

// Constants for the canonical display modes. The zero value ModeNone marks a
// comment whose source mode was absent or is not supported.
const (
	ModeNone  Mode = iota // no usable mode; fails validation
	ScrollRTL             // scroll from right to left
	Top                   // fixed at the top of the screen
	Bottom                // fixed at the bottom of the screen
)

var modeNames = [...]string{ModeNone: "", ScrollRTL: "RTL", Top: "TOP", Bottom: "BOTTOM"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// MarshalText implements the encoding.TextMarshaler interface.
func (m Mode) MarshalText() ([]byte, error) {
	if int(m) >= len(modeNames) {
		return nil, fmt.Errorf("invalid mode %d", m)
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// Names are matched without regard to case.
func (m *Mode) UnmarshalText(text []byte) error {
	for i, name := range modeNames {
		if strings.EqualFold(name, string(text)) {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", text)
}

// A ModeTable maps small integer platform codes to display modes. Codes
// outside the table map to ModeNone.
type ModeTable []Mode

// Lookup returns the mode for code, or ModeNone if code is not in t.
func (t ModeTable) Lookup(code int) Mode {
	if code < 0 || code >= len(t) {
		return ModeNone
	}
	return t[code]
}

// Color is an RGB color with 8-bit channels.
type Color struct {
	R, G, B uint8
}

// White is the default comment color.
var White = Color{R: 255, G: 255, B: 255}

// Uint32 returns c packed as a conventional 0xRRGGBB value.
func (c Color) Uint32() uint32 { return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B) }

// ColorOf unpacks a conventional 0xRRGGBB value. It is the inverse of
// [Color.Uint32], and is unrelated to the platform encoding decoded by
// [PackedColor].
func ColorOf(v uint32) Color { return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)} }

// String renders c as #rrggbb.
func (c Color) String() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// MarshalText implements the encoding.TextMarshaler interface.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// The input must have the form #rrggbb.
func (c *Color) UnmarshalText(text []byte) error {
	if len(text) != 7 || text[0] != '#' {
		return fmt.Errorf("invalid color %q", text)
	}
	v, err := strconv.ParseUint(string(text[1:]), 16, 32)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	*c = ColorOf(uint32(v))
	return nil
}

// A Comment is a single normalized danmaku.
type Comment struct {
	Text     string  `json:"text" yaml:"text"`
	Time     float64 `json:"time" yaml:"time"` // seconds from the start of playback
	Mode     Mode    `json:"mode" yaml:"mode"`
	Size     int     `json:"size" yaml:"size"`
	Color    Color   `json:"color" yaml:"color"`
	Bottom   bool    `json:"bottom,omitempty" yaml:"bottom,omitempty"`       // legacy flag, independent of Mode
	SourceID string  `json:"sourceId,omitempty" yaml:"sourceId,omitempty"` // platform-native ID, if any
}

// Valid reports whether c is usable: it has text, a recognized mode, a
// positive size, and a time in [0, MaxTime).
func (c Comment) Valid() bool {
	switch {
	case c.Text == "":
		return false
	case c.Mode == ModeNone || int(c.Mode) >= len(modeNames):
		return false
	case c.Size <= 0:
		return false
	case math.IsNaN(c.Time) || c.Time < 0 || c.Time >= MaxTime:
		return false
	}
	return true
}

// A Result is the outcome of parsing one response body.
type Result struct {
	// ID is a platform correlation ID shared by all the comments in the
	// result, such as a chat or thread ID. It is empty if the format has none.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Comments are the valid comments, in the order of the source records.
	Comments []Comment `json:"comments" yaml:"comments"`

	// Dropped is the number of source records that did not yield a valid
	// comment.
	Dropped int `json:"dropped" yaml:"dropped"`
}

// Len reports the number of valid comments in r.
func (r *Result) Len() int { return len(r.Comments) }

// Collect gathers the valid comments from seq into a new result, in order.
// Invalid candidates are counted in the Dropped field of the result.
// A parser that cannot construct a candidate for a record should yield a
// zero Comment, which is never valid, so the record is counted.
func Collect(seq iter.Seq[Comment]) *Result {
	res := &Result{Comments: []Comment{}}
	for c := range seq {
		if c.Valid() {
			res.Comments = append(res.Comments, c)
		} else {
			res.Dropped++
		}
	}
	return res
}
