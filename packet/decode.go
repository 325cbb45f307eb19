// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package packet

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// A Field describes how to decode the value of one message field.
type Field struct {
	// Type is the wire type the field must arrive with. A field whose tag
	// carries a different wire type is skipped as if it were unknown.
	Type protowire.Type

	// Read decodes the field value from the head of the scanner. The tag has
	// already been consumed.
	Read func(*Scanner) error
}

// A Schema maps field numbers to decoders for a message type.
type Schema map[protowire.Number]Field

// Decode reads fields from s until it is exhausted, dispatching each one to
// the corresponding entry of sc. Fields not described by sc are skipped.
// Decoding stops exactly at the end of s.
func (sc Schema) Decode(s *Scanner) error {
	for s.Len() != 0 {
		num, typ, err := s.Tag()
		if err != nil {
			return err
		}
		f, ok := sc[num]
		if !ok || f.Type != typ {
			if err := s.Skip(num, typ); err != nil {
				return fmt.Errorf("skip field %d: %w", num, err)
			}
			continue
		}
		if err := f.Read(s); err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
	}
	return nil
}

// Uint64 returns a varint field that stores its value in *v.
func Uint64(v *uint64) Field {
	return Field{Type: protowire.VarintType, Read: func(s *Scanner) (err error) {
		*v, err = s.Varint()
		return
	}}
}

// Uint32 returns a varint field that stores its value truncated to 32 bits
// in *v, as for the uint32 field type.
func Uint32(v *uint32) Field {
	return Field{Type: protowire.VarintType, Read: func(s *Scanner) error {
		u, err := s.Varint()
		*v = uint32(u)
		return err
	}}
}

// Int64 returns a varint field that stores its value in *v, interpreted as
// a two's complement signed integer, as for the int32 and int64 field types.
func Int64(v *int64) Field {
	return Field{Type: protowire.VarintType, Read: func(s *Scanner) error {
		u, err := s.Varint()
		*v = int64(u)
		return err
	}}
}

// String returns a length-delimited field that stores its value in *v.
// The contents are copied out of the input.
func String(v *string) Field {
	return Field{Type: protowire.BytesType, Read: func(s *Scanner) (err error) {
		*v, err = VGet[string](s)
		return
	}}
}

// Repeated returns a length-delimited field that calls f with a scanner
// bounded to the contents of each occurrence of the field, as for a repeated
// message field. If f reports an error, decoding stops with that error.
func Repeated(f func(*Scanner) error) Field {
	return Field{Type: protowire.BytesType, Read: func(s *Scanner) error {
		sub, err := s.Message()
		if err != nil {
			return err
		}
		return f(sub)
	}}
}
