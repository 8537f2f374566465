package blobmsg

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ssargent/blobpack/pkg/blob"
)

// Buf builds a buffer of named records. Its root is a TABLE.
type Buf struct {
	b blob.Buf
}

// NewBuf returns a Buf initialized with Init(head, tail).
func NewBuf(head, tail int) *Buf {
	b := &Buf{}
	b.Init(head, tail)
	return b
}

// Init discards any content and writes an empty TABLE root; head and tail
// are as for blob.Buf.Init.
func (b *Buf) Init(head, tail int) {
	b.b.Init(head, tail)
	b.b.SetRootType(blob.TypeTable)
}

// Reset clears the content and keeps the capacity.
func (b *Buf) Reset() {
	b.b.Reset()
	b.b.SetRootType(blob.TypeTable)
}

func (b *Buf) Root() blob.Field { return b.b.Root() }
func (b *Buf) Bytes() []byte { return b.b.Bytes() }
func (b *Buf) Len() int { return b.b.Len() }
func (b *Buf) Depth() int { return b.b.Depth() }
func (b *Buf) Err() error { return b.b.Err() }

// AddField appends a record named name holding data as its payload. A name
// longer than blob.MaxNameLen sets ErrTooLarge and returns the null field.
func (b *Buf) AddField(t blob.Type, name string, data []byte) blob.Field {
	return b.b.PutNamed(t, name, data)
}

func (b *Buf) AddNull(name string) blob.Field {
	return b.AddField(blob.TypeUnspec, name, nil)
}

func (b *Buf) AddBool(name string, v bool) blob.Field {
	var u uint8
	if v {
		u = 1
	}
	return b.AddU8(name, u)
}

func (b *Buf) AddU8(name string, v uint8) blob.Field {
	return b.AddField(blob.TypeInt8, name, []byte{v})
}

func (b *Buf) AddU16(name string, v uint16) blob.Field {
	return b.AddField(blob.TypeInt16, name, binary.BigEndian.AppendUint16(nil, v))
}

func (b *Buf) AddU32(name string, v uint32) blob.Field {
	return b.AddField(blob.TypeInt32, name, binary.BigEndian.AppendUint32(nil, v))
}

func (b *Buf) AddU64(name string, v uint64) blob.Field {
	return b.AddField(blob.TypeInt64, name, binary.BigEndian.AppendUint64(nil, v))
}

func (b *Buf) AddF32(name string, v float32) blob.Field {
	return b.AddField(blob.TypeFloat32, name, binary.BigEndian.AppendUint32(nil, math.Float32bits(v)))
}

func (b *Buf) AddF64(name string, v float64) blob.Field {
	return b.AddField(blob.TypeFloat64, name, binary.BigEndian.AppendUint64(nil, math.Float64bits(v)))
}

// AddString appends a NUL-terminated STRING record.
func (b *Buf) AddString(name, s string) blob.Field {
	data := make([]byte, len(s)+1)
	copy(data, s)
	return b.AddField(blob.TypeString, name, data)
}

// Printf appends a STRING record holding the formatted text.
func (b *Buf) Printf(name, format string, args ...any) blob.Field {
	return b.AddString(name, fmt.Sprintf(format, args...))
}

// AddBlob re-adds an existing named record with its name, type and payload.
// Container children come along as part of the payload.
func (b *Buf) AddBlob(f blob.Field) blob.Field {
	if f.IsNil() {
		return blob.Field{}
	}
	return b.AddField(f.Type(), f.Name(), f.Payload())
}

// OpenTable starts a named TABLE and returns its cookie for Close.
func (b *Buf) OpenTable(name string) int {
	return b.b.OpenNamed(blob.TypeTable, name)
}

// OpenArray starts a named ARRAY and returns its cookie for Close.
func (b *Buf) OpenArray(name string) int {
	return b.b.OpenNamed(blob.TypeArray, name)
}

// Close ends the innermost open table or array. It panics when cookie is
// not the innermost one.
func (b *Buf) Close(cookie int) {
	b.b.CloseNested(cookie)
}

func (b *Buf) CloseTable(cookie int) { b.Close(cookie) }
func (b *Buf) CloseArray(cookie int) { b.Close(cookie) }
