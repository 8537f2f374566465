package blob

import (
	"encoding/binary"
	"fmt"
)

// MaxCheckDepth bounds the nesting Check descends into.
const MaxCheckDepth = 1024

// FormatError describes a structural defect found by Check.
type FormatError struct {
	Offset int
	Msg    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("blob: %s at offset %d", e.Msg, e.Offset)
}

// Check validates an untrusted buffer holding one root record: lengths stay
// inside their parents, padding is zero, scalar payloads have the width
// their tag requires, name headers fit, and raw key/value tables pair
// STRING keys with values. It returns a *FormatError for the first defect.
func Check(b []byte) error {
	if len(b) < HeaderSize {
		return &FormatError{Offset: 0, Msg: "buffer shorter than a record header"}
	}
	root := FieldOf(b)
	if err := checkField(root, len(b), 0); err != nil {
		return err
	}
	if end := root.PadLen(); end != len(b) {
		return &FormatError{Offset: end, Msg: fmt.Sprintf("%d bytes after the root record", len(b)-end)}
	}
	return nil
}

// checkField validates f, which must end at or before limit.
func checkField(f Field, limit, depth int) error {
	off := f.Offset()
	raw := f.RawLen()
	if raw < HeaderSize {
		return &FormatError{Offset: off, Msg: "record length shorter than its header"}
	}
	if off+f.PadLen() > limit {
		return &FormatError{Offset: off, Msg: fmt.Sprintf("record of %d bytes overruns its parent", raw)}
	}
	for i := off + raw; i < off+f.PadLen(); i++ {
		if f.buf[i] != 0 {
			return &FormatError{Offset: i, Msg: "non-zero padding"}
		}
	}

	t := f.Type()
	if t >= typeLast {
		return &FormatError{Offset: off, Msg: fmt.Sprintf("unknown type tag %d", t)}
	}
	if f.HasName() {
		if err := checkName(f); err != nil {
			return err
		}
	}

	switch t {
	case TypeArray, TypeTable:
		if depth >= MaxCheckDepth {
			return &FormatError{Offset: off, Msg: "nesting too deep"}
		}
		return checkChildren(f, depth+1)
	case TypeUnspec:
		return nil
	}
	if !CheckType(f.Payload(), t) {
		return &FormatError{Offset: off, Msg: fmt.Sprintf("invalid %s payload of %d bytes", t, len(f.Payload()))}
	}
	return nil
}

func checkName(f Field) error {
	d := f.Data()
	if len(d) < nameLenSize {
		return &FormatError{Offset: f.Offset(), Msg: "name header truncated"}
	}
	n := int(binary.BigEndian.Uint16(d))
	if NameHdrLen(n) > len(d) {
		return &FormatError{Offset: f.Offset(), Msg: fmt.Sprintf("name of %d bytes overruns the record", n)}
	}
	if d[nameLenSize+n] != 0 {
		return &FormatError{Offset: f.Offset() + HeaderSize + nameLenSize + n, Msg: "name is not NUL-terminated"}
	}
	return nil
}

func checkChildren(f Field, depth int) error {
	end := f.Offset() + f.RawLen()
	pos := f.Offset() + HeaderSize + f.payloadOffset()
	var named, unnamed, n int
	keyAt := -1
	for pos < end {
		if pos+HeaderSize > end {
			return &FormatError{Offset: pos, Msg: "truncated child header"}
		}
		c := FieldAt(f.buf, pos)
		if err := checkField(c, end, depth); err != nil {
			return err
		}
		if c.HasName() {
			named++
		} else {
			unnamed++
			if f.Type() == TypeTable && n%2 == 0 {
				if c.Type() != TypeString {
					return &FormatError{Offset: pos, Msg: "table key is not a string"}
				}
				keyAt = pos
			}
		}
		n++
		pos += c.PadLen()
	}
	if named > 0 && unnamed > 0 {
		return &FormatError{Offset: f.Offset(), Msg: "container mixes named and unnamed children"}
	}
	if f.Type() == TypeTable && unnamed > 0 && n%2 != 0 {
		return &FormatError{Offset: keyAt, Msg: "table key without a value"}
	}
	return nil
}
