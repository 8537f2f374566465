package blob

import (
	"math"
	"strconv"

	"github.com/ssargent/blobpack/pkg/ujson"
)

// ToJSON renders f as JSON text. Arrays become JSON arrays and tables
// become objects built from their key/value children.
func ToJSON(f Field, opts ujson.EncodeOptions) []byte {
	return AppendJSON(nil, f, opts)
}

// AppendJSON appends the JSON form of f to dst.
//
// INT8 (and therefore BOOL) prints as an unsigned byte, the other integer
// types as signed decimals and floats in %e form with six fraction digits.
// UNSPEC and unknown tags print as null. A table key that is not a STRING
// is printed as the quoted JSON text of its value; a trailing key without a
// value maps to null.
func AppendJSON(dst []byte, f Field, opts ujson.EncodeOptions) []byte {
	if f.IsNil() {
		return append(dst, "null"...)
	}
	switch f.Type() {
	case TypeInt8:
		return strconv.AppendUint(dst, uint64(f.GetU8()), 10)
	case TypeInt16:
		return strconv.AppendInt(dst, int64(f.GetI16()), 10)
	case TypeInt32:
		return strconv.AppendInt(dst, int64(f.GetI32()), 10)
	case TypeInt64:
		return strconv.AppendInt(dst, f.GetI64(), 10)
	case TypeFloat32:
		return ujson.AppendFloat(dst, float64(f.GetF32()))
	case TypeFloat64:
		return ujson.AppendFloat(dst, f.GetF64())
	case TypeString:
		return ujson.AppendString(dst, f.GetString(), opts)
	case TypeArray:
		dst = append(dst, '[')
		for i, c := 0, f.FirstChild(); !c.IsNil(); i, c = i+1, f.NextChild(c) {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendJSON(dst, c, opts)
		}
		return append(dst, ']')
	case TypeTable:
		dst = append(dst, '{')
		first := true
		for key := f.FirstChild(); !key.IsNil(); {
			if !first {
				dst = append(dst, ',')
			}
			first = false
			dst = appendKey(dst, key, opts)
			dst = append(dst, ':')
			value := f.NextChild(key)
			dst = AppendJSON(dst, value, opts)
			if value.IsNil() {
				break
			}
			key = f.NextChild(value)
		}
		return append(dst, '}')
	}
	return append(dst, "null"...)
}

func appendKey(dst []byte, key Field, opts ujson.EncodeOptions) []byte {
	if key.Type() == TypeString {
		return ujson.AppendString(dst, key.GetString(), opts)
	}
	return ujson.AppendString(dst, string(AppendJSON(nil, key, opts)), opts)
}

// FromJSON replaces the content of b with the decoded JSON text. A
// top-level array or object becomes the root (ARRAY or TABLE); a top-level
// scalar becomes the single child of an ARRAY root. Object members are
// stored as alternating STRING key and value records. Integers get the
// narrowest tag that prints the same number again, so ToJSON output
// survives a FromJSON/ToJSON cycle unchanged.
//
// On error b is left empty.
func (b *Buf) FromJSON(data []byte, opts ujson.Options) error {
	b.Reset()
	s := &bufSink{b: b}
	if _, err := ujson.Decode[int](s, data, opts); err != nil {
		b.Reset()
		return err
	}
	if err := b.Err(); err != nil {
		b.Reset()
		return err
	}
	return nil
}

// bufSink appends decoded values straight into a Buf. Values are record
// offsets; the root offset stands for the outermost container.
type bufSink struct {
	b      *Buf
	rooted bool
}

func (s *bufSink) NewString(v []byte) int { return s.b.PutString(string(v)).Offset() }
func (s *bufSink) NewInt(v int32) int { return s.putInt(int64(v)) }
func (s *bufSink) NewLong(v int64) int { return s.putInt(v) }
func (s *bufSink) NewUnsignedLong(v uint64) int { return s.b.PutUint64(v).Offset() }
func (s *bufSink) NewDouble(v float64) int { return s.b.PutReal(v).Offset() }
func (s *bufSink) NewTrue() int { return s.b.PutBool(true).Offset() }
func (s *bufSink) NewFalse() int { return s.b.PutBool(false).Offset() }
func (s *bufSink) NewNull() int { return s.b.PutNull().Offset() }
func (s *bufSink) NewArray() int { return s.open(TypeArray) }
func (s *bufSink) NewObject() int { return s.open(TypeTable) }
func (s *bufSink) ArrayAddItem(int, int) {}
func (s *bufSink) ObjectAddKey(int, int, int) {}
func (s *bufSink) EndArray(arr int) int { return s.close(arr) }
func (s *bufSink) EndObject(obj int) int { return s.close(obj) }

// putInt picks the narrowest tag that prints v back unchanged: INT8 prints
// unsigned, so it only takes 0..255.
func (s *bufSink) putInt(v int64) int {
	var f Field
	switch {
	case v >= 0 && v <= math.MaxUint8:
		f = s.b.PutInt8(int8(v))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		f = s.b.PutInt16(int16(v))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		f = s.b.PutInt32(int32(v))
	default:
		f = s.b.PutInt64(v)
	}
	return f.Offset()
}

// open retags the root for the first container, which is always the
// outermost one, and opens a nest for every other.
func (s *bufSink) open(t Type) int {
	if !s.rooted {
		s.rooted = true
		s.b.SetRootType(t)
		return s.b.head
	}
	return s.b.open(t, nil)
}

func (s *bufSink) close(off int) int {
	if off != s.b.head {
		s.b.CloseNested(off)
	}
	return off
}

func (s *bufSink) ReleaseObject(off int) {
	if off == s.b.head {
		s.b.truncate(s.b.head + HeaderSize)
		return
	}
	s.b.truncate(off)
}
