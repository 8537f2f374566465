package blob

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrTooLarge is reported by Buf.Err when a record would exceed MaxLen or a
// name would exceed MaxNameLen.
var ErrTooLarge = errors.New("blob: record exceeds maximum length")

// Buf builds a buffer holding one root record. Every put appends a child to
// the innermost open nest; the root stays open for the lifetime of the Buf
// and its length always covers everything written.
//
// Positions handed out by Buf (cookies, Field offsets) are byte offsets, so
// they survive reallocation. Field values returned by the put methods view
// the buffer as it was at the time of the call.
type Buf struct {
	buf  []byte
	head int
	tail int
	nest []int
	err  error
}

// NewBuf returns a Buf initialized with Init(head, tail).
func NewBuf(head, tail int) *Buf {
	b := &Buf{}
	b.Init(head, tail)
	return b
}

// Init discards any content and writes an empty ARRAY root after head
// reserved bytes. tail bytes of spare capacity are kept after the cursor on
// every growth.
func (b *Buf) Init(head, tail int) {
	b.head = max(head, 0)
	b.tail = max(tail, 0)
	b.buf = b.buf[:0]
	b.nest = b.nest[:0]
	b.err = nil
	b.grow(b.head + HeaderSize)
	b.buf = b.buf[:b.head]
	clear(b.buf)
	b.writeHeader(TypeArray, false)
}

// Reset clears the content but keeps the allocated capacity and the
// reserved head/tail sizes.
func (b *Buf) Reset() {
	b.Init(b.head, b.tail)
}

// Err returns the first ErrTooLarge hit by a put, if any.
func (b *Buf) Err() error {
	return b.err
}

// Head returns the reserved bytes in front of the root record.
func (b *Buf) Head() []byte {
	return b.buf[:b.head]
}

// Root returns the root record.
func (b *Buf) Root() Field {
	return FieldAt(b.buf, b.head)
}

// Bytes returns the root record bytes.
func (b *Buf) Bytes() []byte {
	return b.buf[b.head:]
}

// Len is the number of bytes written, head room included.
func (b *Buf) Len() int {
	return len(b.buf)
}

// Cap is the current capacity of the backing array.
func (b *Buf) Cap() int {
	return cap(b.buf)
}

// Depth is the number of nests currently open, not counting the root.
func (b *Buf) Depth() int {
	return len(b.nest)
}

// SetRootType retags the root, e.g. to TypeTable for key/value content.
func (b *Buf) SetRootType(t Type) {
	b.Root().SetType(t)
}

// grow makes room for n more bytes plus the reserved tail, doubling the
// capacity or fitting exactly, whichever is larger.
func (b *Buf) grow(n int) {
	need := len(b.buf) + n + b.tail
	if need <= cap(b.buf) {
		return
	}
	nb := make([]byte, len(b.buf), max(2*cap(b.buf), need))
	copy(nb, b.buf)
	b.buf = nb
}

// writeHeader appends a header with length HeaderSize and returns its offset.
func (b *Buf) writeHeader(t Type, named bool) int {
	off := len(b.buf)
	h := uint32(t)<<idShift&idMask | HeaderSize
	if named {
		h |= hasNameFlag
	}
	b.buf = binary.BigEndian.AppendUint32(b.buf, h)
	return off
}

// appendRecord writes a complete padded record whose payload is the
// concatenation of parts and returns its offset, or -1 when it cannot be
// represented.
func (b *Buf) appendRecord(t Type, named bool, parts ...[]byte) int {
	size := HeaderSize
	for _, p := range parts {
		size += len(p)
	}
	if !b.fits(size) {
		return -1
	}
	b.grow(PadLen(size))
	off := b.writeHeader(t, named)
	for _, p := range parts {
		b.buf = append(b.buf, p...)
	}
	b.buf = b.buf[:off+PadLen(size)]
	f := Field{buf: b.buf, off: off}
	f.SetRawLen(size)
	f.FillPad()
	b.updateRoot()
	return off
}

func (b *Buf) fits(size int) bool {
	if size > MaxLen || len(b.buf)+PadLen(size)-b.head > MaxLen {
		if b.err == nil {
			b.err = ErrTooLarge
		}
		return false
	}
	return true
}

func (b *Buf) updateRoot() {
	b.Root().SetRawLen(len(b.buf) - b.head)
}

func (b *Buf) field(off int) Field {
	if off < 0 {
		return Field{}
	}
	return Field{buf: b.buf, off: off}
}

// PutRaw appends a record with the given tag and payload.
func (b *Buf) PutRaw(t Type, data []byte) Field {
	return b.field(b.appendRecord(t, false, data))
}

// PutExtended appends a record with the name-present flag set; hdr is written
// in front of data inside the payload.
func (b *Buf) PutExtended(t Type, hdr, data []byte) Field {
	return b.field(b.appendRecord(t, true, hdr, data))
}

// PutNamed appends a record named name. A name longer than MaxNameLen sets
// ErrTooLarge and nothing is written.
func (b *Buf) PutNamed(t Type, name string, data []byte) Field {
	if !b.nameFits(name) {
		return Field{}
	}
	return b.PutExtended(t, NameHeader(name), data)
}

func (b *Buf) nameFits(name string) bool {
	if len(name) > MaxNameLen {
		if b.err == nil {
			b.err = ErrTooLarge
		}
		return false
	}
	return true
}

// PutNull appends an UNSPEC record with no payload.
func (b *Buf) PutNull() Field {
	return b.PutRaw(TypeUnspec, nil)
}

// PutBool appends an INT8 record holding 0 or 1.
func (b *Buf) PutBool(v bool) Field {
	var u uint8
	if v {
		u = 1
	}
	return b.PutRaw(TypeBool, []byte{u})
}

func (b *Buf) PutInt8(v int8) Field {
	return b.PutRaw(TypeInt8, []byte{uint8(v)})
}

func (b *Buf) PutInt16(v int16) Field {
	return b.PutRaw(TypeInt16, binary.BigEndian.AppendUint16(nil, uint16(v)))
}

func (b *Buf) PutInt32(v int32) Field {
	return b.PutRaw(TypeInt32, binary.BigEndian.AppendUint32(nil, uint32(v)))
}

func (b *Buf) PutInt64(v int64) Field {
	return b.PutRaw(TypeInt64, binary.BigEndian.AppendUint64(nil, uint64(v)))
}

// PutUint64 stores v in an INT64 record; readers see it through GetU64.
func (b *Buf) PutUint64(v uint64) Field {
	return b.PutRaw(TypeInt64, binary.BigEndian.AppendUint64(nil, v))
}

// PutInt appends v using the narrowest signed type that holds it.
func (b *Buf) PutInt(v int64) Field {
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return b.PutInt8(int8(v))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return b.PutInt16(int16(v))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return b.PutInt32(int32(v))
	}
	return b.PutInt64(v)
}

func (b *Buf) PutFloat32(v float32) Field {
	return b.PutRaw(TypeFloat32, binary.BigEndian.AppendUint32(nil, math.Float32bits(v)))
}

func (b *Buf) PutFloat64(v float64) Field {
	return b.PutRaw(TypeFloat64, binary.BigEndian.AppendUint64(nil, math.Float64bits(v)))
}

// PutReal is PutFloat64.
func (b *Buf) PutReal(v float64) Field {
	return b.PutFloat64(v)
}

// PutString appends a NUL-terminated STRING record.
func (b *Buf) PutString(s string) Field {
	return b.field(b.appendRecord(TypeString, false, []byte(s), []byte{0}))
}

// PutAttr appends a verbatim copy of f, header and children included.
func (b *Buf) PutAttr(f Field) Field {
	if f.IsNil() {
		return Field{}
	}
	src := f.Bytes()
	raw := min(f.RawLen(), len(src))
	if raw < HeaderSize || !b.fits(raw) {
		return Field{}
	}
	b.grow(PadLen(raw))
	off := len(b.buf)
	b.buf = append(b.buf, src[:raw]...)
	b.buf = b.buf[:off+PadLen(raw)]
	nf := Field{buf: b.buf, off: off}
	nf.SetRawLen(raw)
	nf.FillPad()
	b.updateRoot()
	return nf
}

// OpenNested starts a TABLE or ARRAY record and returns its cookie. Records
// put until the matching CloseNested become its children.
func (b *Buf) OpenNested(array bool) int {
	t := TypeTable
	if array {
		t = TypeArray
	}
	return b.open(t, nil)
}

// OpenExtended starts a named nest whose name header hdr precedes the
// children. hdr must be padded to the alignment.
func (b *Buf) OpenExtended(t Type, hdr []byte) int {
	return b.open(t, hdr)
}

// OpenNamed starts a nest named name. A name longer than MaxNameLen sets
// ErrTooLarge and the nest is dropped on close.
func (b *Buf) OpenNamed(t Type, name string) int {
	if !b.nameFits(name) {
		b.nest = append(b.nest, -1)
		return -1
	}
	return b.open(t, NameHeader(name))
}

func (b *Buf) open(t Type, hdr []byte) int {
	if !b.fits(HeaderSize + len(hdr)) {
		// keep the stack balanced; the nest is dropped on close
		b.nest = append(b.nest, -1)
		return -1
	}
	b.grow(HeaderSize + len(hdr))
	off := b.writeHeader(t, hdr != nil)
	b.buf = append(b.buf, hdr...)
	b.nest = append(b.nest, off)
	b.updateRoot()
	return off
}

func (b *Buf) OpenTable() int { return b.OpenNested(false) }
func (b *Buf) OpenArray() int { return b.OpenNested(true) }

// CloseNested finalizes the nest opened as cookie. Nests close in LIFO
// order; anything else is a programming error and panics.
func (b *Buf) CloseNested(cookie int) {
	n := len(b.nest)
	if n == 0 || b.nest[n-1] != cookie {
		panic("blob: close of a nest that is not the innermost open one")
	}
	b.nest = b.nest[:n-1]
	if cookie < 0 {
		return
	}
	f := b.field(cookie)
	f.SetRawLen(len(b.buf) - cookie)
	b.updateRoot()
}

func (b *Buf) CloseTable(cookie int) { b.CloseNested(cookie) }
func (b *Buf) CloseArray(cookie int) { b.CloseNested(cookie) }

// truncate drops everything from off on, closing any nest that started
// there or later. Used to unwind partially built records.
func (b *Buf) truncate(off int) {
	if off < b.head+HeaderSize || off > len(b.buf) {
		return
	}
	for len(b.nest) > 0 && b.nest[len(b.nest)-1] >= off {
		b.nest = b.nest[:len(b.nest)-1]
	}
	b.buf = b.buf[:off]
	b.updateRoot()
}
