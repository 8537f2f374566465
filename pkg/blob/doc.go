// Package blob implements a compact binary TLV record format with nesting,
// a growable builder, a signature-based shape validator and JSON
// transcoding.
//
// # Record Format
//
// Every record starts with a 32-bit big-endian header:
//
//	[has_name:1][type:7][raw_len:24][payload...][pad]
//
// Fields:
//   - has_name: the payload starts with a name header (see below)
//   - type: one of the Type constants; BOOL shares the INT8 tag
//   - raw_len: header plus payload, excluding padding (at most 16 MiB - 1)
//   - pad: zero bytes up to the next multiple of 4
//
// Scalar payloads are big-endian. STRING payloads carry a trailing NUL.
// ARRAY and TABLE payloads are a sequence of child records; a raw TABLE
// alternates STRING keys and values.
//
// A named record's payload begins with
//
//	[name_len:16][name][NUL][pad to 4]
//
// and the value follows. The named layer lives in package blobmsg; Field
// only needs to know where the payload starts.
//
// # Building
//
// A Buf owns one root record (ARRAY unless retagged) that is always open:
//
//	var b blob.Buf
//	b.Init(0, 0)
//	b.PutString("foo")
//	t := b.OpenTable()
//	b.PutString("one")
//	b.PutInt(1)
//	b.CloseTable(t)
//
// Nest cookies and Field offsets are byte positions, so they stay valid
// when the buffer grows. Nests must be closed in LIFO order; closing any
// other cookie panics. A record that would exceed the 24-bit length sets a
// sticky ErrTooLarge, reported by Buf.Err.
//
// # Reading
//
// Field is a view (buffer, offset). The zero Field is the null field and
// all getters on it return zero values, as do getters on payloads that are
// too short. Use Check before trusting a buffer from outside the process,
// and Validate or Parse to check the shape of a record's children:
//
//	var out [2]blob.Field
//	if blob.Parse(root, "si", out[:]) {
//	    name, age := out[0].GetString(), out[1].GetInt()
//	}
//
// # JSON
//
// ToJSON prints records with fixed formatting: INT8 as an unsigned byte,
// floats as %e with six fraction digits, tables as objects in insertion
// order. Buf.FromJSON parses text with package ujson and builds records
// directly into the buffer. Transcoding a built buffer to JSON, back, and
// to JSON again yields identical text.
//
// # Thread Safety
//
// A Buf must not be used from more than one goroutine while it is being
// written. Fields are read-only views and may be shared while no writer is
// growing the underlying buffer.
package blob
