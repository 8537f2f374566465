package blob

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Type is the 7-bit type tag stored in a field header.
type Type uint8

const (
	TypeUnspec Type = iota
	TypeArray
	TypeTable
	TypeString
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	typeLast

	// TypeBool shares the INT8 tag; the wire carries no distinction.
	TypeBool = TypeInt8
)

var typeNames = [...]string{
	TypeUnspec:  "unspec",
	TypeArray:   "array",
	TypeTable:   "table",
	TypeString:  "string",
	TypeInt8:    "int8",
	TypeInt16:   "int16",
	TypeInt32:   "int32",
	TypeInt64:   "int64",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
}

func (t Type) String() string {
	if t < typeLast {
		return typeNames[t]
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// Header layout: [has_name:1][type:7][raw_len:24], big-endian.
const (
	HeaderSize = 4
	Align      = 4
	MaxLen     = lenMask

	hasNameFlag = 0x80000000
	idMask      = 0x7f000000
	idShift     = 24
	lenMask     = 0x00ffffff
)

// PadLen rounds n up to the field alignment.
func PadLen(n int) int {
	return (n + Align - 1) &^ (Align - 1)
}

// Field is a view of one record inside a buffer. The zero Field is the null
// field: every accessor on it returns a zero value.
type Field struct {
	buf []byte
	off int
}

// FieldAt returns the field whose header starts at off in b, or the null
// field when there is no room for a header.
func FieldAt(b []byte, off int) Field {
	if off < 0 || off+HeaderSize > len(b) {
		return Field{}
	}
	return Field{buf: b, off: off}
}

// FieldOf is FieldAt(b, 0).
func FieldOf(b []byte) Field {
	return FieldAt(b, 0)
}

// IsNil reports whether f is the null field.
func (f Field) IsNil() bool {
	return f.buf == nil
}

// Offset returns the header position of f within its owning buffer, or -1
// for the null field.
func (f Field) Offset() int {
	if f.buf == nil {
		return -1
	}
	return f.off
}

func (f Field) header() uint32 {
	if f.buf == nil {
		return 0
	}
	return binary.BigEndian.Uint32(f.buf[f.off:])
}

func (f Field) setHeader(h uint32) {
	binary.BigEndian.PutUint32(f.buf[f.off:], h)
}

// Type returns the type tag; the null field reports TypeUnspec.
func (f Field) Type() Type {
	return Type((f.header() & idMask) >> idShift)
}

// SetType rewrites the type tag, preserving the name flag and length.
func (f Field) SetType(t Type) {
	if f.buf == nil {
		return
	}
	f.setHeader(f.header()&^idMask | (uint32(t)<<idShift)&idMask)
}

// HasName reports whether the name-present flag is set.
func (f Field) HasName() bool {
	return f.header()&hasNameFlag != 0
}

// SetHasName sets or clears the name-present flag.
func (f Field) SetHasName(v bool) {
	if f.buf == nil {
		return
	}
	h := f.header() &^ hasNameFlag
	if v {
		h |= hasNameFlag
	}
	f.setHeader(h)
}

// RawLen is the total length including the header, excluding padding.
func (f Field) RawLen() int {
	return int(f.header() & lenMask)
}

// SetRawLen stores n, clamped to at least the header size and masked to 24
// bits.
func (f Field) SetRawLen(n int) {
	if f.buf == nil {
		return
	}
	if n < HeaderSize {
		n = HeaderSize
	}
	f.setHeader(f.header()&^lenMask | uint32(n)&lenMask)
}

// PadLen is RawLen rounded up to the alignment.
func (f Field) PadLen() int {
	return PadLen(f.RawLen())
}

// DataLen is the payload length.
func (f Field) DataLen() int {
	if f.buf == nil {
		return 0
	}
	n := f.RawLen() - HeaderSize
	if n < 0 {
		return 0
	}
	return n
}

// Data returns the payload bytes, clipped to the owning buffer.
func (f Field) Data() []byte {
	if f.buf == nil {
		return nil
	}
	start := f.off + HeaderSize
	end := min(f.off+f.RawLen(), len(f.buf))
	if end < start {
		return f.buf[start:start]
	}
	return f.buf[start:end]
}

// Bytes returns the record including its padding, clipped to the owning
// buffer.
func (f Field) Bytes() []byte {
	if f.buf == nil {
		return nil
	}
	end := min(f.off+max(f.PadLen(), HeaderSize), len(f.buf))
	return f.buf[f.off:end]
}

// FillPad zeroes the bytes between RawLen and PadLen.
func (f Field) FillPad() {
	if f.buf == nil {
		return
	}
	end := min(f.off+f.PadLen(), len(f.buf))
	start := f.off + f.RawLen()
	if start < end {
		clear(f.buf[start:end])
	}
}

// FirstChild returns the first nested record or the null field. Children of
// a named record start after its name header.
func (f Field) FirstChild() Field {
	start := HeaderSize + f.payloadOffset()
	if f.RawLen() <= start {
		return Field{}
	}
	return FieldAt(f.buf, f.off+start)
}

// NextChild returns the sibling after child within f. The null field marks
// the end of iteration; a malformed child that does not advance also ends it.
func (f Field) NextChild(child Field) Field {
	if f.buf == nil || child.buf == nil {
		return Field{}
	}
	step := child.PadLen()
	if step < HeaderSize {
		return Field{}
	}
	next := child.off + step
	if next-f.off >= f.PadLen() {
		return Field{}
	}
	return FieldAt(f.buf, next)
}

// Children collects the direct children of f in order.
func (f Field) Children() []Field {
	var out []Field
	for c := f.FirstChild(); !c.IsNil(); c = f.NextChild(c) {
		out = append(out, c)
	}
	return out
}

// Equal compares two records byte-for-byte over their padded length. Two null
// fields are equal.
func Equal(a, b Field) bool {
	if a.IsNil() && b.IsNil() {
		return true
	}
	if a.IsNil() || b.IsNil() {
		return false
	}
	if a.PadLen() != b.PadLen() {
		return false
	}
	return bytes.Equal(a.Bytes(), b.Bytes())
}

// Copy returns a field backed by a private copy of f's padded bytes.
func (f Field) Copy() Field {
	if f.buf == nil {
		return Field{}
	}
	b := make([]byte, max(f.PadLen(), HeaderSize))
	copy(b, f.Bytes())
	return Field{buf: b}
}

var typeWidth = [typeLast]int{
	TypeString:  1,
	TypeInt8:    1,
	TypeInt16:   2,
	TypeInt32:   4,
	TypeInt64:   8,
	TypeFloat32: 4,
	TypeFloat64: 8,
}

// CheckType reports whether data is a valid payload for t: fixed-width types
// need an exact length, strings need a terminating NUL, unknown tags fail.
func CheckType(data []byte, t Type) bool {
	if t >= typeLast {
		return false
	}
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeFloat32, TypeFloat64:
		return len(data) == typeWidth[t]
	case TypeString:
		return len(data) >= 1 && data[len(data)-1] == 0
	}
	return true
}

// Typed getters read the payload (after the name header, if any) without
// checking the tag. Short payloads and the null field read as zero.

func (f Field) GetU8() uint8 {
	d := f.Payload()
	if len(d) < 1 {
		return 0
	}
	return d[0]
}

func (f Field) GetU16() uint16 {
	d := f.Payload()
	if len(d) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(d)
}

func (f Field) GetU32() uint32 {
	d := f.Payload()
	if len(d) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(d)
}

func (f Field) GetU64() uint64 {
	d := f.Payload()
	if len(d) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(d)
}

func (f Field) GetI8() int8   { return int8(f.GetU8()) }
func (f Field) GetI16() int16 { return int16(f.GetU16()) }
func (f Field) GetI32() int32 { return int32(f.GetU32()) }
func (f Field) GetI64() int64 { return int64(f.GetU64()) }

func (f Field) GetF32() float32 { return math.Float32frombits(f.GetU32()) }
func (f Field) GetF64() float64 { return math.Float64frombits(f.GetU64()) }

// GetString returns the payload up to the first NUL.
func (f Field) GetString() string {
	d := f.Payload()
	if i := bytes.IndexByte(d, 0); i >= 0 {
		d = d[:i]
	}
	return string(d)
}

// GetRaw copies the payload into dst and returns the number of bytes copied.
func (f Field) GetRaw(dst []byte) int {
	return copy(dst, f.Payload())
}

// GetInt converts any numeric field to int64. Strings are scanned as C
// integer literals (0x and leading-zero prefixes honored); other tags read 0.
func (f Field) GetInt() int64 {
	switch f.Type() {
	case TypeInt8:
		return int64(f.GetI8())
	case TypeInt16:
		return int64(f.GetI16())
	case TypeInt32:
		return int64(f.GetI32())
	case TypeInt64:
		return f.GetI64()
	case TypeFloat32:
		return int64(f.GetF32())
	case TypeFloat64:
		return int64(f.GetF64())
	case TypeString:
		return scanInt(f.GetString())
	}
	return 0
}

// GetReal converts any numeric field to float64, scanning strings as
// decimal text; other tags read 0.
func (f Field) GetReal() float64 {
	switch f.Type() {
	case TypeInt8:
		return float64(f.GetI8())
	case TypeInt16:
		return float64(f.GetI16())
	case TypeInt32:
		return float64(f.GetI32())
	case TypeInt64:
		return float64(f.GetI64())
	case TypeFloat32:
		return float64(f.GetF32())
	case TypeFloat64:
		return f.GetF64()
	case TypeString:
		return scanReal(f.GetString())
	}
	return 0
}

// GetBool is GetInt() != 0.
func (f Field) GetBool() bool {
	return f.GetInt() != 0
}

// scanInt parses the longest integer prefix of s, sscanf("%lli") style.
func scanInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\r\n\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	base := 10
	digits := end
	if end+1 < len(s) && s[end] == '0' && (s[end+1] == 'x' || s[end+1] == 'X') {
		base = 16
		digits = end + 2
	} else if end < len(s) && s[end] == '0' {
		base = 8
	}
	end = digits
	for end < len(s) && isDigit(s[end], base) {
		end++
	}
	if end == digits {
		return 0
	}
	v, err := strconv.ParseInt(s[:end], 0, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	// out-of-range literals saturate like strtoll
	return v
}

func isDigit(c byte, base int) bool {
	switch base {
	case 8:
		return c >= '0' && c <= '7'
	case 16:
		return (c >= '0' && c <= '9') || (c|0x20 >= 'a' && c|0x20 <= 'f')
	}
	return c >= '0' && c <= '9'
}

// scanReal parses the longest decimal float prefix of s.
func scanReal(s string) float64 {
	s = strings.TrimLeft(s, " \t\r\n\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	mant := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
	}
	if end == mant || (end == mant+1 && s[mant] == '.') {
		return 0
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		digits := exp
		for exp < len(s) && s[exp] >= '0' && s[exp] <= '9' {
			exp++
		}
		if exp > digits {
			end = exp
		}
	}
	v, _ := strconv.ParseFloat(s[:end], 64)
	return v
}
