// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/maristie/ass-danmaku/packet"
	"google.golang.org/protobuf/encoding/protowire"
)

const packHelp = `Pack arguments into a protobuf wire-format message.

The pattern specifies the sequence of fields to write. Whitespace in the
pattern is ignored. Each field is a decimal field number followed by a code
that says how the corresponding argument is encoded:

  v  : an unsigned varint
  i  : a signed integer, encoded as for int64 fields
  %  : a Boolean constant (true or false)
  s  : a length-delimited string
  q  : a length-delimited quoted string (Go style escapes)

In addition, a field number followed by "(" begins a nested message, which
goes until a matching ")". The nested message is encoded according to its
contents and written as a length-delimited field. Nested messages may be
nested further, and consume arguments in order.

For example, the following writes a bilibili segment reply with one comment:

  danmaku pack '1(2v 3v 4v 5v 7s)' 1500 1 25 16777215 hello
`

// packFields appends the fields described by pat to b, consuming arguments
// from args. It returns the unconsumed arguments.
func packFields(b *packet.Builder, pat string, args []string) ([]string, error) {
	for i := 0; i < len(pat); i++ {
		c := pat[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			continue
		case c < '0' || c > '9':
			return nil, fmt.Errorf("missing field number before %c", c)
		}

		j := i
		for j < len(pat) && pat[j] >= '0' && pat[j] <= '9' {
			j++
		}
		n, err := strconv.ParseInt(pat[i:j], 10, 32)
		if err != nil || !protowire.Number(n).IsValid() {
			return nil, fmt.Errorf("invalid field number %q", pat[i:j])
		}
		num := protowire.Number(n)
		if j == len(pat) {
			return nil, fmt.Errorf("missing code for field %d", num)
		}
		c, i = pat[j], j

		if c == '(' {
			sub, ok := cutParen(pat[i+1:], '(', ')')
			if !ok {
				return nil, errors.New("missing close parenthesis")
			}
			var serr error
			b.Message(num, func(mb *packet.Builder) {
				args, serr = packFields(mb, sub, args)
			})
			if serr != nil {
				return nil, fmt.Errorf("field %d: invalid subpattern: %w", num, serr)
			}
			i += len(sub) + 1
			continue
		}

		if len(args) == 0 {
			return nil, fmt.Errorf("missing argument for field %d (%c)", num, c)
		}
		switch c {
		case 'v':
			v, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("field %d: invalid varint: %w", num, err)
			}
			b.Varint(num, v)
		case 'i':
			v, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("field %d: invalid integer: %w", num, err)
			}
			b.Int(num, v)
		case '%':
			v, err := strconv.ParseBool(args[0])
			if err != nil {
				return nil, fmt.Errorf("field %d: invalid bool: %w", num, err)
			}
			b.Bool(num, v)
		case 's':
			b.String(num, args[0])
		case 'q':
			dec, err := strconv.Unquote(`"` + args[0] + `"`)
			if err != nil {
				return nil, fmt.Errorf("field %d: invalid string: %w", num, err)
			}
			b.String(num, dec)
		default:
			return nil, fmt.Errorf("invalid pattern word %c", c)
		}
		args = args[1:]
	}
	return args, nil
}

func cutParen(s string, l, r rune) (string, bool) {
	d := 1
	for i, c := range s {
		if c == l {
			d++
		} else if c == r {
			d--
			if d == 0 {
				return s[:i], true
			}
		}
	}
	return s, false
}
