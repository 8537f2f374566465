package ujson

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	// DefaultMaxDepth is the nesting ceiling used when Options.MaxDepth is 0.
	DefaultMaxDepth = 1024

	// maxDecimals bounds the fraction digits accumulated in fast float mode;
	// further digits are scanned and dropped.
	maxDecimals = 15

	inlineScratch = 1024
)

var negPow10 = [maxDecimals + 1]float64{
	1, 1e-1, 1e-2, 1e-3, 1e-4, 1e-5, 1e-6, 1e-7,
	1e-8, 1e-9, 1e-10, 1e-11, 1e-12, 1e-13, 1e-14, 1e-15,
}

// ObjectDecoder builds values of type T as the decoder walks the input. All
// calls happen synchronously during Decode.
//
// NewString receives a scratch slice that is only valid for the duration of
// the call. EndArray and EndObject are called when a container closes
// successfully and return the value handed to the parent. ReleaseObject is
// called for every container (and pending key) abandoned on an error path.
type ObjectDecoder[T any] interface {
	NewString(s []byte) T
	NewInt(v int32) T
	NewLong(v int64) T
	NewUnsignedLong(v uint64) T
	NewDouble(v float64) T
	NewTrue() T
	NewFalse() T
	NewNull() T
	NewArray() T
	NewObject() T
	ArrayAddItem(arr, item T)
	ObjectAddKey(obj, key, value T)
	EndArray(arr T) T
	EndObject(obj T) T
	ReleaseObject(v T)
}

// KeyDecoder is implemented by sinks that treat object keys differently from
// string values. When present, NewKey replaces NewString for keys.
type KeyDecoder[T any] interface {
	NewKey(s []byte) T
}

// Options tunes a decode. The zero value is ready to use.
type Options struct {
	// PreciseFloat parses fractional and exponent numbers with
	// strconv.ParseFloat and reports out-of-range values as ErrRange.
	PreciseFloat bool
	// MaxDepth is the deepest array/object nesting accepted.
	MaxDepth int
	// Allocator backs the string scratch buffer once it outgrows the inline
	// space. Defaults to HeapAllocator.
	Allocator Allocator
}

type decoder[T any] struct {
	sink     ObjectDecoder[T]
	keys     KeyDecoder[T]
	data     []byte
	pos      int
	depth    int
	maxDepth int
	precise  bool
	alloc    Allocator
	esc      []byte
	escHeap  bool
	inline   [inlineScratch]byte
	err      *DecodeError
}

// Decode parses one JSON value from data into sink. On failure it returns a
// *DecodeError and every partially built container has been passed to
// ReleaseObject.
func Decode[T any](sink ObjectDecoder[T], data []byte, opts Options) (T, error) {
	d := &decoder[T]{
		sink:     sink,
		data:     data,
		maxDepth: opts.MaxDepth,
		precise:  opts.PreciseFloat,
		alloc:    opts.Allocator,
	}
	if d.maxDepth <= 0 {
		d.maxDepth = DefaultMaxDepth
	}
	if d.alloc == nil {
		d.alloc = HeapAllocator{}
	}
	if k, ok := sink.(KeyDecoder[T]); ok {
		d.keys = k
	}
	d.esc = d.inline[:0]
	defer d.freeScratch()

	var zero T
	v, ok := d.decodeAny()
	if !ok {
		return zero, d.err
	}
	d.skipWhitespace()
	if d.pos != len(d.data) {
		sink.ReleaseObject(v)
		d.fail(d.pos, "trailing data", ErrSyntax)
		return zero, d.err
	}
	return v, nil
}

func (d *decoder[T]) fail(off int, msg string, kind error) (T, bool) {
	d.err = &DecodeError{Offset: off, Msg: msg, Err: kind}
	var zero T
	return zero, false
}

func (d *decoder[T]) skipWhitespace() {
	for d.pos < len(d.data) {
		switch d.data[d.pos] {
		case ' ', '\t', '\r', '\n':
			d.pos++
		default:
			return
		}
	}
}

func (d *decoder[T]) peek() (byte, bool) {
	if d.pos >= len(d.data) {
		return 0, false
	}
	return d.data[d.pos], true
}

func (d *decoder[T]) decodeAny() (T, bool) {
	d.skipWhitespace()
	c, ok := d.peek()
	if !ok {
		return d.fail(d.pos, "expected object or value", ErrSyntax)
	}
	switch {
	case c == '"':
		return d.decodeString(false)
	case c == '-' || (c >= '0' && c <= '9'):
		return d.decodeNumeric()
	case c == '[':
		return d.decodeArray()
	case c == '{':
		return d.decodeObject()
	case c == 't':
		return d.decodeLiteral("true", d.sink.NewTrue)
	case c == 'f':
		return d.decodeLiteral("false", d.sink.NewFalse)
	case c == 'n':
		return d.decodeLiteral("null", d.sink.NewNull)
	}
	return d.fail(d.pos, "expected object or value", ErrSyntax)
}

func (d *decoder[T]) decodeLiteral(word string, mk func() T) (T, bool) {
	if !bytes.HasPrefix(d.data[d.pos:], []byte(word)) {
		return d.fail(d.pos, "unexpected character found when decoding '"+word+"'", ErrSyntax)
	}
	d.pos += len(word)
	return mk(), true
}

func (d *decoder[T]) decodeNumeric() (T, bool) {
	start := d.pos
	p := d.pos
	neg := false
	limit := uint64(math.MaxUint64)
	if d.data[p] == '-' {
		neg = true
		limit = 1 << 63
		p++
	}
	intStart := p
	var v uint64
	for ; p < len(d.data); p++ {
		c := d.data[p]
		if c < '0' || c > '9' {
			break
		}
		n := uint64(c - '0')
		if v > (limit-n)/10 {
			if neg {
				return d.fail(start, "value is too small", ErrRange)
			}
			return d.fail(start, "value is too big", ErrRange)
		}
		v = v*10 + n
	}
	if p == intStart {
		return d.fail(start, "expected digit when decoding numeric value", ErrSyntax)
	}
	if p < len(d.data) {
		switch d.data[p] {
		case '.', 'e', 'E':
			return d.decodeFloat(start, p, neg, v)
		}
	}

	d.pos = p
	switch {
	case !neg && v&(1<<63) != 0:
		return d.sink.NewUnsignedLong(v), true
	case v>>31 != 0:
		if neg {
			return d.sink.NewLong(-int64(v)), true
		}
		return d.sink.NewLong(int64(v)), true
	}
	n := int32(v)
	if neg {
		n = -n
	}
	return d.sink.NewInt(n), true
}

// decodeFloat continues a number at p, which holds '.', 'e' or 'E'.
func (d *decoder[T]) decodeFloat(start, p int, neg bool, intValue uint64) (T, bool) {
	if d.precise {
		return d.decodePreciseFloat(start)
	}

	frac := 0.0
	decimals := 0
	if d.data[p] == '.' {
		for p++; p < len(d.data) && isDigit(d.data[p]); p++ {
			if decimals < maxDecimals {
				frac = frac*10 + float64(d.data[p]-'0')
				decimals++
			}
		}
	}

	sign := 1.0
	if neg {
		sign = -1
	}
	value := (float64(intValue) + frac*negPow10[decimals]) * sign

	if p < len(d.data) && (d.data[p] == 'e' || d.data[p] == 'E') {
		p++
		expSign := 1.0
		if p < len(d.data) && (d.data[p] == '-' || d.data[p] == '+') {
			if d.data[p] == '-' {
				expSign = -1
			}
			p++
		}
		exp := 0.0
		for ; p < len(d.data) && isDigit(d.data[p]); p++ {
			exp = exp*10 + float64(d.data[p]-'0')
		}
		value *= math.Pow(10, exp*expSign)
	}

	d.pos = p
	return d.sink.NewDouble(value), true
}

func (d *decoder[T]) decodePreciseFloat(start int) (T, bool) {
	p := start
	if d.data[p] == '-' {
		p++
	}
	p = skipDigits(d.data, p)
	if p < len(d.data) && d.data[p] == '.' {
		p = skipDigits(d.data, p+1)
	}
	if p < len(d.data) && (d.data[p] == 'e' || d.data[p] == 'E') {
		p++
		if p < len(d.data) && (d.data[p] == '-' || d.data[p] == '+') {
			p++
		}
		p = skipDigits(d.data, p)
	}
	v, err := strconv.ParseFloat(string(d.data[start:p]), 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return d.fail(start, "range error when decoding numeric as double", ErrRange)
		}
		return d.fail(start, "invalid numeric value", ErrSyntax)
	}
	d.pos = p
	return d.sink.NewDouble(v), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func skipDigits(b []byte, p int) int {
	for p < len(b) && isDigit(b[p]) {
		p++
	}
	return p
}

// grow returns esc with room for k more bytes. The first overflow of the
// inline space moves the scratch buffer to the allocator; later overflows
// double it with Realloc.
func (d *decoder[T]) grow(esc []byte, k int) ([]byte, error) {
	need := len(esc) + k
	if need <= cap(esc) {
		return esc, nil
	}
	n := max(2*cap(esc), need)
	var b []byte
	var err error
	if d.escHeap {
		b, err = d.alloc.Realloc(esc, n)
		if err != nil || b == nil {
			d.alloc.Free(d.esc)
			d.esc = nil
			d.escHeap = false
		}
	} else {
		b, err = d.alloc.Alloc(n)
		if err == nil && b != nil {
			copy(b, esc)
		}
	}
	if err != nil {
		return nil, err
	}
	if b == nil || cap(b) < need {
		return nil, ErrAlloc
	}
	d.esc = b[:0]
	d.escHeap = true
	return b[:len(esc)], nil
}

func (d *decoder[T]) freeScratch() {
	if d.escHeap {
		d.alloc.Free(d.esc)
		d.esc = nil
		d.escHeap = false
	}
}

// minRune is the smallest code point an n-byte UTF-8 sequence may encode.
var minRune = [5]rune{2: 0x80, 3: 0x800, 4: 0x10000}

func (d *decoder[T]) decodeString(key bool) (T, bool) {
	d.pos++
	esc := d.esc[:0]
	data := d.data
	p := d.pos
	for {
		if p >= len(data) || data[p] == 0 {
			return d.fail(p, "unmatched '\"' when decoding 'string'", ErrSyntax)
		}
		c := data[p]
		// the longest single write is a 4 byte UTF-8 sequence
		if len(esc)+utf8.UTFMax > cap(esc) {
			var err error
			if esc, err = d.grow(esc, utf8.UTFMax); err != nil {
				return d.fail(p, "could not reserve memory block", ErrAlloc)
			}
		}
		switch {
		case c == '"':
			d.pos = p + 1
			d.esc = esc
			if key && d.keys != nil {
				return d.keys.NewKey(esc), true
			}
			return d.sink.NewString(esc), true

		case c == '\\':
			p++
			if p >= len(data) || data[p] == 0 {
				return d.fail(p, "unterminated escape sequence when decoding 'string'", ErrSyntax)
			}
			switch data[p] {
			case '\\', '"', '/':
				esc = append(esc, data[p])
			case 'b':
				esc = append(esc, '\b')
			case 'f':
				esc = append(esc, '\f')
			case 'n':
				esc = append(esc, '\n')
			case 'r':
				esc = append(esc, '\r')
			case 't':
				esc = append(esc, '\t')
			case 'u':
				r, next, ok := d.unicodeEscape(p)
				if !ok {
					var zero T
					return zero, false
				}
				esc = utf8.AppendRune(esc, r)
				p = next
				continue
			default:
				return d.fail(p, "unrecognized escape sequence when decoding 'string'", ErrSyntax)
			}
			p++

		case c < 0x80:
			esc = append(esc, c)
			p++

		default:
			var n int
			var r rune
			switch {
			case c < 0xc0:
				return d.fail(p, "invalid UTF-8 lead byte when decoding 'string'", ErrUTF8)
			case c < 0xe0:
				n, r = 2, rune(c&0x1f)
			case c < 0xf0:
				n, r = 3, rune(c&0x0f)
			case c < 0xf8:
				n, r = 4, rune(c&0x07)
			default:
				return d.fail(p, "invalid UTF-8 sequence length when decoding 'string'", ErrUTF8)
			}
			for i := 1; i < n; i++ {
				if p+i >= len(data) || data[p+i]&0xc0 != 0x80 {
					return d.fail(p+i, "invalid octet in UTF-8 sequence when decoding 'string'", ErrUTF8)
				}
				r = r<<6 | rune(data[p+i]&0x3f)
			}
			if r < minRune[n] {
				return d.fail(p, fmt.Sprintf("overlong %d byte UTF-8 sequence detected when decoding 'string'", n), ErrUTF8)
			}
			if r > utf8.MaxRune || (r >= 0xd800 && r < 0xe000) {
				return d.fail(p, "invalid code point in UTF-8 sequence when decoding 'string'", ErrUTF8)
			}
			esc = append(esc, data[p:p+n]...)
			p += n
		}
	}
}

// unicodeEscape decodes \uXXXX at p (which holds the 'u'), joining a
// surrogate pair when present. It returns the rune and the position after
// the escape.
func (d *decoder[T]) unicodeEscape(p int) (rune, int, bool) {
	r, ok := d.hex4(p + 1)
	if !ok {
		return 0, 0, false
	}
	p += 5
	switch {
	case r >= 0xd800 && r < 0xdc00:
		if p+1 >= len(d.data) || d.data[p] != '\\' || d.data[p+1] != 'u' {
			d.fail(p, "unpaired high surrogate when decoding 'string'", ErrSurrogate)
			return 0, 0, false
		}
		lo, ok := d.hex4(p + 2)
		if !ok {
			return 0, 0, false
		}
		if lo < 0xdc00 || lo >= 0xe000 {
			d.fail(p, "unpaired high surrogate when decoding 'string'", ErrSurrogate)
			return 0, 0, false
		}
		return utf16.DecodeRune(r, lo), p + 6, true
	case r >= 0xdc00 && r < 0xe000:
		return utf8.RuneError, p, true
	}
	return r, p, true
}

func (d *decoder[T]) hex4(p int) (rune, bool) {
	var r rune
	for i := 0; i < 4; i++ {
		if p+i >= len(d.data) || d.data[p+i] == 0 {
			d.fail(p+i, "unterminated unicode escape sequence when decoding 'string'", ErrSyntax)
			return 0, false
		}
		c := d.data[p+i]
		switch {
		case c >= '0' && c <= '9':
			r = r<<4 | rune(c-'0')
		case c >= 'a' && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case c >= 'A' && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			d.fail(p+i, "unexpected character in unicode escape sequence when decoding 'string'", ErrSyntax)
			return 0, false
		}
	}
	return r, true
}

func (d *decoder[T]) enter(start int) bool {
	d.depth++
	if d.depth > d.maxDepth {
		d.fail(start, "reached object decoding depth limit", ErrDepth)
		return false
	}
	return true
}

func (d *decoder[T]) decodeArray() (T, bool) {
	var zero T
	if !d.enter(d.pos) {
		return zero, false
	}
	arr := d.sink.NewArray()
	d.pos++
	d.skipWhitespace()
	if c, ok := d.peek(); ok && c == ']' {
		d.pos++
		d.depth--
		return d.sink.EndArray(arr), true
	}
	for {
		item, ok := d.decodeAny()
		if !ok {
			d.sink.ReleaseObject(arr)
			return zero, false
		}
		d.sink.ArrayAddItem(arr, item)

		d.skipWhitespace()
		c, ok := d.peek()
		if !ok {
			d.sink.ReleaseObject(arr)
			return d.fail(d.pos, "unexpected end of input when decoding array value", ErrSyntax)
		}
		d.pos++
		switch c {
		case ']':
			d.depth--
			return d.sink.EndArray(arr), true
		case ',':
			d.skipWhitespace()
			if c, ok := d.peek(); ok && c == ']' {
				d.sink.ReleaseObject(arr)
				return d.fail(d.pos, "unexpected character found when decoding array value", ErrSyntax)
			}
		default:
			d.sink.ReleaseObject(arr)
			return d.fail(d.pos-1, "unexpected character found when decoding array value", ErrSyntax)
		}
	}
}

func (d *decoder[T]) decodeObject() (T, bool) {
	var zero T
	if !d.enter(d.pos) {
		return zero, false
	}
	obj := d.sink.NewObject()
	d.pos++
	d.skipWhitespace()
	if c, ok := d.peek(); ok && c == '}' {
		d.pos++
		d.depth--
		return d.sink.EndObject(obj), true
	}
	for {
		d.skipWhitespace()
		if c, ok := d.peek(); !ok || c != '"' {
			d.sink.ReleaseObject(obj)
			return d.fail(d.pos, "key name of object must be 'string' when decoding 'object'", ErrSyntax)
		}
		key, ok := d.decodeString(true)
		if !ok {
			d.sink.ReleaseObject(obj)
			return zero, false
		}

		d.skipWhitespace()
		if c, ok := d.peek(); !ok || c != ':' {
			d.sink.ReleaseObject(key)
			d.sink.ReleaseObject(obj)
			return d.fail(d.pos, "no ':' found when decoding object value", ErrSyntax)
		}
		d.pos++

		value, ok := d.decodeAny()
		if !ok {
			d.sink.ReleaseObject(key)
			d.sink.ReleaseObject(obj)
			return zero, false
		}
		d.sink.ObjectAddKey(obj, key, value)

		d.skipWhitespace()
		c, ok := d.peek()
		if !ok {
			d.sink.ReleaseObject(obj)
			return d.fail(d.pos, "unexpected end of input when decoding object value", ErrSyntax)
		}
		d.pos++
		switch c {
		case '}':
			d.depth--
			return d.sink.EndObject(obj), true
		case ',':
			d.skipWhitespace()
			if c, ok := d.peek(); ok && c == '}' {
				d.sink.ReleaseObject(obj)
				return d.fail(d.pos, "unexpected character found when decoding object value", ErrSyntax)
			}
		default:
			d.sink.ReleaseObject(obj)
			return d.fail(d.pos-1, "unexpected character found when decoding object value", ErrSyntax)
		}
	}
}
