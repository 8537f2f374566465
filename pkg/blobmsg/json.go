package blobmsg

import (
	"math"

	"github.com/ssargent/blobpack/pkg/blob"
	"github.com/ssargent/blobpack/pkg/ujson"
)

// ToJSON renders f as JSON text, keying table members by their embedded
// names.
func ToJSON(f blob.Field, opts ujson.EncodeOptions) []byte {
	return AppendJSON(nil, f, opts)
}

// AppendJSON appends the JSON form of f to dst. Scalars are formatted as by
// blob.AppendJSON; array element names are not printed.
func AppendJSON(dst []byte, f blob.Field, opts ujson.EncodeOptions) []byte {
	var open, end byte
	switch f.Type() {
	case blob.TypeArray:
		open, end = '[', ']'
	case blob.TypeTable:
		open, end = '{', '}'
	default:
		return blob.AppendJSON(dst, f, opts)
	}

	dst = append(dst, open)
	for i, c := 0, f.FirstChild(); !c.IsNil(); i, c = i+1, f.NextChild(c) {
		if i > 0 {
			dst = append(dst, ',')
		}
		if end == '}' {
			dst = ujson.AppendString(dst, c.Name(), opts)
			dst = append(dst, ':')
		}
		dst = AppendJSON(dst, c, opts)
	}
	return append(dst, end)
}

// FromJSON replaces the content of b with the decoded JSON text. Object
// members become records named by their keys and array elements get empty
// names. An outermost object or array becomes the root; any other value is
// stored as the only element of an ARRAY root.
//
// On error b is left empty.
func (b *Buf) FromJSON(data []byte, opts ujson.Options) error {
	b.Reset()
	s := &sink{b: b}
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

// sink writes named records into a Buf. Values are record offsets. Keys are
// held until the value they name is written.
type sink struct {
	b      *Buf
	rooted bool
	// one entry per open container, true for objects
	tables []bool
	key    string
}

func (s *sink) NewKey(k []byte) int {
	s.key = string(k)
	return -1
}

func (s *sink) NewString(v []byte) int { return s.b.AddString(s.name(), string(v)).Offset() }
func (s *sink) NewInt(v int32) int { return s.putInt(int64(v)) }
func (s *sink) NewLong(v int64) int { return s.putInt(v) }
func (s *sink) NewUnsignedLong(v uint64) int { return s.b.AddU64(s.name(), v).Offset() }
func (s *sink) NewDouble(v float64) int { return s.b.AddF64(s.name(), v).Offset() }
func (s *sink) NewTrue() int { return s.b.AddBool(s.name(), true).Offset() }
func (s *sink) NewFalse() int { return s.b.AddBool(s.name(), false).Offset() }
func (s *sink) NewNull() int { return s.b.AddNull(s.name()).Offset() }
func (s *sink) NewArray() int { return s.open(blob.TypeArray) }
func (s *sink) NewObject() int { return s.open(blob.TypeTable) }
func (s *sink) ArrayAddItem(int, int) {}
func (s *sink) ObjectAddKey(int, int, int) {}
func (s *sink) EndArray(arr int) int { return s.close(arr) }
func (s *sink) EndObject(obj int) int { return s.close(obj) }

// ReleaseObject has nothing to unwind; FromJSON resets the whole buffer.
func (s *sink) ReleaseObject(int) {}

// name returns the name for the next value and roots a bare scalar in an
// ARRAY.
func (s *sink) name() string {
	if !s.rooted {
		s.rooted = true
		s.b.b.SetRootType(blob.TypeArray)
	}
	n := len(s.tables)
	if n == 0 || !s.tables[n-1] {
		return ""
	}
	k := s.key
	s.key = ""
	return k
}

// putInt mirrors the width choice of blob.Buf.FromJSON so printed numbers
// read back unchanged.
func (s *sink) putInt(v int64) int {
	name := s.name()
	var f blob.Field
	switch {
	case v >= 0 && v <= math.MaxUint8:
		f = s.b.AddU8(name, uint8(v))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		f = s.b.AddU16(name, uint16(v))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		f = s.b.AddU32(name, uint32(v))
	default:
		f = s.b.AddU64(name, uint64(v))
	}
	return f.Offset()
}

func (s *sink) open(t blob.Type) int {
	if !s.rooted {
		s.rooted = true
		s.b.b.SetRootType(t)
		s.tables = append(s.tables, t == blob.TypeTable)
		return s.b.Root().Offset()
	}
	var off int
	if t == blob.TypeTable {
		off = s.b.OpenTable(s.name())
	} else {
		off = s.b.OpenArray(s.name())
	}
	s.tables = append(s.tables, t == blob.TypeTable)
	return off
}

func (s *sink) close(off int) int {
	s.tables = s.tables[:len(s.tables)-1]
	if off != s.b.Root().Offset() {
		s.b.Close(off)
	}
	return off
}
