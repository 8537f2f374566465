// Package blobmsg is the named-attribute layer over package blob. Every
// record it writes carries a name header, so tables are keyed by the names
// embedded in their children instead of alternating key and value records.
// Array elements carry an empty name.
//
// Type tags, payload encodings and alignment are those of package blob;
// blob.Field already skips the name header when reading a payload, so the
// accessors here are thin.
package blobmsg

import "github.com/ssargent/blobpack/pkg/blob"

// Policy names a child and the type it must have. TypeUnspec matches any
// type.
type Policy = blob.Policy

// HdrLen is the padded size of the name header for a name of nameLen bytes.
func HdrLen(nameLen int) int {
	return blob.NameHdrLen(nameLen)
}

// Name returns the embedded name of f.
func Name(f blob.Field) string {
	return f.Name()
}

// ClearName makes the name of f read as empty without moving its payload.
func ClearName(f blob.Field) {
	f.ClearName()
}

// Type returns the type tag of f, TypeUnspec for the null field.
func Type(f blob.Field) blob.Type {
	return f.Type()
}

// Data returns the payload of f after its name header.
func Data(f blob.Field) []byte {
	if f.IsNil() {
		return nil
	}
	return f.Payload()
}

// DataLen is len(Data(f)).
func DataLen(f blob.Field) int {
	return len(Data(f))
}

func GetU8(f blob.Field) uint8 { return f.GetU8() }
func GetBool(f blob.Field) bool { return f.GetU8() != 0 }
func GetU16(f blob.Field) uint16 { return f.GetU16() }
func GetU32(f blob.Field) uint32 { return f.GetU32() }
func GetU64(f blob.Field) uint64 { return f.GetU64() }
func GetF32(f blob.Field) float32 { return f.GetF32() }
func GetF64(f blob.Field) float64 { return f.GetF64() }
func GetString(f blob.Field) string { return f.GetString() }
