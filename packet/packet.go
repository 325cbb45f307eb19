// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package packet provides support for encoding and decoding binary messages
// in the protocol buffer wire format, without generated code.
//
// A [Scanner] reads tagged fields sequentially from a bounded region of a
// buffer. A [Schema] maps field numbers to readers, so that a message type
// can be described as a table rather than as generated code. A [Builder]
// produces encoded messages, chiefly for tests and tools.
package packet

import (
	"fmt"
	"io"

	"github.com/creachadair/mds/value"
	"google.golang.org/protobuf/encoding/protowire"
)

// A Builder is a buffer that accumulates an encoded message. The zero value
// is ready for use as an empty builder.
type Builder struct {
	buf []byte
}

// Varint appends a varint field with the given number and value to b.
func (b *Builder) Varint(num protowire.Number, v uint64) {
	b.buf = protowire.AppendTag(b.buf, num, protowire.VarintType)
	b.buf = protowire.AppendVarint(b.buf, v)
}

// Int appends a signed varint field to b. Negative values are encoded in
// ten bytes, as for the int32 and int64 field types.
func (b *Builder) Int(num protowire.Number, v int64) { b.Varint(num, uint64(v)) }

// Bool appends a Boolean field to b. The encoding is a varint 0 or 1.
func (b *Builder) Bool(num protowire.Number, ok bool) { b.Varint(num, value.Cond[uint64](ok, 1, 0)) }

// String appends a length-delimited field containing s to b.
func (b *Builder) String(num protowire.Number, s string) {
	b.buf = protowire.AppendTag(b.buf, num, protowire.BytesType)
	b.buf = protowire.AppendString(b.buf, s)
}

// VPut appends a length-delimited field containing vs to b.
func (b *Builder) VPut(num protowire.Number, vs []byte) {
	b.buf = protowire.AppendTag(b.buf, num, protowire.BytesType)
	b.buf = protowire.AppendBytes(b.buf, vs)
}

// Message appends a nested message field to b. The contents of the message
// are whatever f adds to the builder passed to it.
func (b *Builder) Message(num protowire.Number, f func(*Builder)) {
	var sub Builder
	f(&sub)
	b.VPut(num, sub.buf)
}

// Put appends the specified raw bytes to b without framing.
func (b *Builder) Put(vs ...byte) { b.buf = append(b.buf, vs...) }

// Len reports the number of bytes currently in the buffer.
func (b *Builder) Len() int { return len(b.buf) }

// Bytes reports the current contents of the buffer. The builder retains ownership
// of the reported slice, and the caller must not retain or modify its contents
// unless b will no longer be accessed.
func (b *Builder) Bytes() []byte { return b.buf }

// Reset discards the contents of b and leaves it empty.
func (b *Builder) Reset() { b.buf = b.buf[:0] }

// A Scanner reads encoded fields from the contents of a message.
// The methods of a scanner return [io.EOF] when no further input is available.
// Incomplete values report [io.ErrUnexpectedEOF].
type Scanner struct {
	rest   []byte
	offset int // of rest from the start of the outermost input
}

// NewScanner constructs a [Scanner] that consumes data from input.
// The scanner does not modify the contents of input, but retain slices
// into it, so the caller should ensure it is not modified while the scanner
// is in use.
func NewScanner[Str ~string | ~[]byte](input Str) *Scanner {
	return &Scanner{rest: []byte(input)}
}

// consumed advances s past n bytes of input, or reports an error for a
// negative protowire result code.
func (s *Scanner) consumed(n int) error {
	if n < 0 {
		return fmt.Errorf("offset %d: %w", s.offset, protowire.ParseError(n))
	}
	s.offset += n
	s.rest = s.rest[n:]
	return nil
}

// Varint parses a single base-128 varint from the head of the input.
// Values longer than 64 bits are rejected.
func (s *Scanner) Varint() (uint64, error) {
	if len(s.rest) == 0 {
		return 0, io.EOF
	}
	v, n := protowire.ConsumeVarint(s.rest)
	if err := s.consumed(n); err != nil {
		return 0, err
	}
	return v, nil
}

// Tag parses a field tag from the head of the input, and reports the field
// number and wire type it encodes.
func (s *Scanner) Tag() (protowire.Number, protowire.Type, error) {
	if len(s.rest) == 0 {
		return 0, 0, io.EOF
	}
	num, typ, n := protowire.ConsumeTag(s.rest)
	if err := s.consumed(n); err != nil {
		return 0, 0, err
	}
	return num, typ, nil
}

// Skip discards the value of a field with the given number and wire type
// from the head of the input. The tag must already have been consumed.
func (s *Scanner) Skip(num protowire.Number, typ protowire.Type) error {
	return s.consumed(protowire.ConsumeFieldValue(num, typ, s.rest))
}

// Message parses a length-delimited value from the head of s and returns a
// scanner bounded to exactly its contents. The parent scanner is advanced
// past the value whether or not the caller consumes the child.
func (s *Scanner) Message() (*Scanner, error) {
	data, err := VGet[[]byte](s)
	if err != nil {
		return nil, err
	}
	return &Scanner{rest: data, offset: s.offset - len(data)}, nil
}

// Len reports the number of remaining unconsumed input bytes in s.
func (s *Scanner) Len() int { return len(s.rest) }

// Offset reports the offset (0-based) of the next unconsumed input byte in s.
// For a scanner returned by [Scanner.Message], offsets are relative to the
// outermost input.
func (s *Scanner) Offset() int { return s.offset }

// Rest returns a slice of the remaining unconsumed input of s.
// The reported slice is only valid until the next call to a method of s,
// and the caller must not modify its contents.
func (s *Scanner) Rest() []byte { return s.rest }

// VGet parses a single length-delimited value from the head of s.
// The length must be encoded as a varint.
// When the result is a slice, the value aliases the input, and the caller must
// not modify its contents.
func VGet[Str ~string | ~[]byte](s *Scanner) (out Str, err error) {
	nb, err := s.Varint()
	if err == io.EOF {
		return out, io.ErrUnexpectedEOF
	} else if err != nil {
		return out, err
	}
	if uint64(len(s.rest)) < nb {
		return out, fmt.Errorf("offset %d: value truncated (%d < %d bytes): %w",
			s.offset, len(s.rest), nb, io.ErrUnexpectedEOF)
	}
	out = Str(s.rest[:nb])
	s.offset += int(nb)
	s.rest = s.rest[nb:]
	return out, nil
}
