// Package ujson is a single-pass JSON decoder that is generic over the values
// it builds, plus the text primitives shared by the blob encoders.
//
// Decode walks the input once and calls an ObjectDecoder for every value, so
// the same parser fills a blob.Buf, a blobmsg buffer or a plain Go tree
// (Tree). Containers are handed back through EndArray/EndObject when they
// close and through ReleaseObject when decoding fails part way.
//
// # Numbers
//
// Integers are accumulated in a uint64 and overflow is an error, never a
// wrapped value. Results widen by magnitude:
//
//	|v| < 2^31             NewInt
//	|v| < 2^63 (or -2^63)  NewLong
//	2^63 <= v < 2^64       NewUnsignedLong
//
// Numbers with a fraction or exponent go to NewDouble. By default at most 15
// fraction digits are accumulated; Options.PreciseFloat uses strconv instead
// and reports out-of-range values.
//
// # Strings
//
// Escapes are expanded into a scratch buffer that starts inline and moves to
// Options.Allocator once a string might outgrow it. \u escapes join UTF-16
// surrogate pairs; a high surrogate without its low half is an error. Raw
// UTF-8 is validated and overlong sequences are rejected.
package ujson
