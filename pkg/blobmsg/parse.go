package blobmsg

import (
	"encoding/binary"
	"errors"

	"github.com/ssargent/blobpack/pkg/blob"
)

// ErrInvalidAttr is returned by Parse and ParseArray when a child selected by
// a policy fails CheckAttr.
var ErrInvalidAttr = errors.New("blobmsg: invalid attribute")

// CheckAttr reports whether f is a well-formed named record: the name header
// fits and is NUL-terminated, the type is known and the payload is valid for
// it. With name set the name must be non-empty. Tables and arrays are
// checked recursively.
func CheckAttr(f blob.Field, name bool) bool {
	if f.IsNil() || !f.HasName() {
		return false
	}
	d := f.Data()
	if len(d) < 2 {
		return false
	}
	n := int(binary.BigEndian.Uint16(d))
	if name && n == 0 {
		return false
	}
	if 2+n >= len(d) || d[2+n] != 0 || HdrLen(n) > len(d) {
		return false
	}

	switch t := f.Type(); t {
	case blob.TypeArray, blob.TypeTable:
		return CheckArray(f, blob.TypeUnspec) >= 0
	default:
		return blob.CheckType(f.Payload(), t)
	}
}

// CheckArray validates every child of the table or array f and returns the
// number of children, or -1 when f is not a container, a child is malformed
// or a child's type differs from t. TypeUnspec accepts any type. Table
// children must have non-empty names.
func CheckArray(f blob.Field, t blob.Type) int {
	var table bool
	switch f.Type() {
	case blob.TypeArray:
	case blob.TypeTable:
		table = true
	default:
		return -1
	}

	n := 0
	for c := f.FirstChild(); !c.IsNil(); c = f.NextChild(c) {
		if t != blob.TypeUnspec && c.Type() != t {
			return -1
		}
		if !CheckAttr(c, table) {
			return -1
		}
		n++
	}
	return n
}

// CheckAttrList is CheckArray(f, t) >= 0.
func CheckAttrList(f blob.Field, t blob.Type) bool {
	return CheckArray(f, t) >= 0
}

// Parse fills out[i] with the first child of table whose name and type match
// policies[i]. Slots without a match are nil. It returns the number of slots
// filled, or ErrInvalidAttr when a matching child is malformed.
func Parse(table blob.Field, policies []Policy, out []blob.Field) (int, error) {
	n := min(len(policies), len(out))
	clear(out)

	filled := 0
	for c := table.FirstChild(); !c.IsNil(); c = table.NextChild(c) {
		name := c.Name()
		for i := 0; i < n; i++ {
			p := policies[i]
			if p.Type != blob.TypeUnspec && p.Type != c.Type() {
				continue
			}
			if p.Name != name {
				continue
			}
			if !CheckAttr(c, true) {
				clear(out)
				return 0, ErrInvalidAttr
			}
			if !out[i].IsNil() {
				continue
			}
			out[i] = c
			filled++
		}
	}
	return filled, nil
}

// ParseArray matches the children of f to policies by position; names are
// ignored. A child whose type does not match its policy leaves the slot nil.
func ParseArray(f blob.Field, policies []Policy, out []blob.Field) (int, error) {
	n := min(len(policies), len(out))
	clear(out)

	filled := 0
	i := 0
	for c := f.FirstChild(); !c.IsNil() && i < n; c, i = f.NextChild(c), i+1 {
		p := policies[i]
		if p.Type != blob.TypeUnspec && p.Type != c.Type() {
			continue
		}
		if !CheckAttr(c, false) {
			clear(out)
			return 0, ErrInvalidAttr
		}
		out[i] = c
		filled++
	}
	return filled, nil
}
