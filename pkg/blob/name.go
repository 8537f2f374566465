package blob

import (
	"bytes"
	"encoding/binary"
)

// A record with the name-present flag carries a name header in front of its
// payload: a big-endian uint16 name length, the name bytes and a NUL, padded
// to the alignment.
const nameLenSize = 2

// MaxNameLen is the longest name a name header can carry.
const MaxNameLen = 0xffff

// NameHdrLen is the padded size of a name header for a name of n bytes.
func NameHdrLen(n int) int {
	return PadLen(nameLenSize + n + 1)
}

// NameHeader encodes the name header for name. Names longer than MaxNameLen
// are cut; Buf.PutNamed and Buf.OpenNamed reject them instead.
func NameHeader(name string) []byte {
	if len(name) > MaxNameLen {
		name = name[:MaxNameLen]
	}
	hdr := make([]byte, NameHdrLen(len(name)))
	binary.BigEndian.PutUint16(hdr, uint16(len(name)))
	copy(hdr[nameLenSize:], name)
	return hdr
}

// payloadOffset is the distance from the start of Data to the payload.
func (f Field) payloadOffset() int {
	if !f.HasName() {
		return 0
	}
	d := f.Data()
	if len(d) < nameLenSize {
		return len(d)
	}
	return min(NameHdrLen(int(binary.BigEndian.Uint16(d))), len(d))
}

// Payload returns the data after the name header; for unnamed records it is
// Data.
func (f Field) Payload() []byte {
	return f.Data()[f.payloadOffset():]
}

// Name returns the embedded name up to its first NUL, or "" for unnamed
// records.
func (f Field) Name() string {
	if !f.HasName() {
		return ""
	}
	d := f.Data()
	if len(d) < nameLenSize {
		return ""
	}
	n := int(binary.BigEndian.Uint16(d))
	name := d[nameLenSize:min(nameLenSize+n, len(d))]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return string(name)
}

// ClearName blanks the first byte of the embedded name so it reads as empty;
// the header size is left unchanged.
func (f Field) ClearName() {
	if !f.HasName() {
		return
	}
	d := f.Data()
	if len(d) > nameLenSize {
		d[nameLenSize] = 0
	}
}
