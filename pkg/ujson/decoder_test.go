package ujson

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTreeScalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"true", "true", true},
		{"false", " false ", false},
		{"null", "null", nil},
		{"string", `"hello"`, "hello"},
		{"int", "42", int64(42)},
		{"negative int", "-13", int64(-13)},
		{"max int32", "2147483647", int64(math.MaxInt32)},
		{"long", "2147483648", int64(2147483648)},
		{"min int64", "-9223372036854775808", int64(math.MinInt64)},
		{"unsigned long", "18446744073709551615", uint64(math.MaxUint64)},
		{"double", "3.5", 3.5},
		{"negative double", "-0.5", -0.5},
		{"exponent", "1e3", 1000.0},
		{"fraction and exponent", "2.5E1", 25.0},
		{"escapes", `"a\"b\\c\/d\b\f\n\r\t"`, "a\"b\\c/d\b\f\n\r\t"},
		{"unicode escape", `"\u00e9\u4E2D"`, "é中"},
		{"raw utf8", `"héllo 世界"`, "héllo 世界"},
		{"surrogate pair", `"\uD83D\uDE00"`, "\U0001F600"},
		{"lone low surrogate", `"\uDE00"`, "\uFFFD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTree([]byte(tt.input), Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeTreeContainers(t *testing.T) {
	got, err := DecodeTree([]byte(` { "a" : [1, 2, {"b": null}], "c": {} , "d": [] } `), Options{})
	require.NoError(t, err)

	want := map[string]any{
		"a": []any{int64(1), int64(2), map[string]any{"b": nil}},
		"c": map[string]any{},
		"d": []any{},
	}
	assert.Equal(t, want, got)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  error
		msg   string
	}{
		{"empty", "", ErrSyntax, "expected object or value"},
		{"garbage", "?", ErrSyntax, "expected object or value"},
		{"overflow", "99999999999999999999", ErrRange, "value is too big"},
		{"underflow", "-9223372036854775809", ErrRange, "value is too small"},
		{"bare minus", "-", ErrSyntax, "expected digit"},
		{"bad literal", "tru", ErrSyntax, "'true'"},
		{"trailing data", "1 2", ErrSyntax, "trailing data"},
		{"unterminated string", `"abc`, ErrSyntax, "unmatched"},
		{"nul in string", "\"ab\x00c\"", ErrSyntax, "unmatched"},
		{"bad escape", `"\x"`, ErrSyntax, "unrecognized escape"},
		{"short unicode escape", `"\u12"`, ErrSyntax, "unicode escape"},
		{"bad hex", `"\u12G4"`, ErrSyntax, "unexpected character in unicode escape"},
		{"unpaired high surrogate", `"\uD800"`, ErrSurrogate, "unpaired high surrogate"},
		{"high surrogate then text", `"\uD800abcdef"`, ErrSurrogate, "unpaired high surrogate"},
		{"high surrogate then non-low", `"\uD800\u0041"`, ErrSurrogate, "unpaired high surrogate"},
		{"overlong 2 byte", "\"\xc0\xaf\"", ErrUTF8, "overlong 2 byte"},
		{"overlong 3 byte", "\"\xe0\x80\xaf\"", ErrUTF8, "overlong 3 byte"},
		{"overlong 4 byte", "\"\xf0\x80\x80\xaf\"", ErrUTF8, "overlong 4 byte"},
		{"stray continuation", "\"\x80\"", ErrUTF8, "lead byte"},
		{"bad continuation", "\"\xc3\x28\"", ErrUTF8, "invalid octet"},
		{"truncated sequence", "\"\xe4\xb8", ErrUTF8, "invalid octet"},
		{"sequence too long", "\"\xf8\x88\x80\x80\x80\"", ErrUTF8, "sequence length"},
		{"array trailing comma", "[1,]", ErrSyntax, "array value"},
		{"array missing comma", "[1 2]", ErrSyntax, "array value"},
		{"array unterminated", "[1", ErrSyntax, "end of input"},
		{"object trailing comma", `{"a":1,}`, ErrSyntax, "object value"},
		{"object non-string key", `{1:2}`, ErrSyntax, "must be 'string'"},
		{"object missing colon", `{"a" 1}`, ErrSyntax, "no ':'"},
		{"object unterminated", `{"a":1`, ErrSyntax, "end of input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTree([]byte(tt.input), Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.msg)

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.GreaterOrEqual(t, de.Offset, 0)
			assert.LessOrEqual(t, de.Offset, len(tt.input))
		})
	}
}

func TestDecodeErrorOffset(t *testing.T) {
	_, err := DecodeTree([]byte(`[1, 2, x]`), Options{})
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 7, de.Offset)
}

func TestDecodeDepthLimit(t *testing.T) {
	nested := func(n int) []byte {
		return []byte(strings.Repeat("[", n) + strings.Repeat("]", n))
	}

	t.Run("default limit", func(t *testing.T) {
		_, err := DecodeTree(nested(DefaultMaxDepth), Options{})
		require.NoError(t, err)

		_, err = DecodeTree(nested(DefaultMaxDepth+1), Options{})
		assert.ErrorIs(t, err, ErrDepth)
	})

	t.Run("configured limit", func(t *testing.T) {
		_, err := DecodeTree(nested(3), Options{MaxDepth: 3})
		require.NoError(t, err)

		_, err = DecodeTree(nested(4), Options{MaxDepth: 3})
		assert.ErrorIs(t, err, ErrDepth)

		_, err = DecodeTree([]byte(`{"a":{"b":{"c":{}}}}`), Options{MaxDepth: 3})
		assert.ErrorIs(t, err, ErrDepth)
	})

	t.Run("siblings do not accumulate depth", func(t *testing.T) {
		_, err := DecodeTree([]byte(`[[],[],[],[]]`), Options{MaxDepth: 2})
		assert.NoError(t, err)
	})
}

func TestDecodeFloatModes(t *testing.T) {
	t.Run("fraction digits beyond the limit are dropped", func(t *testing.T) {
		got, err := DecodeTree([]byte("0.12345678901234567890"), Options{})
		require.NoError(t, err)
		assert.InDelta(t, 0.123456789012345, got, 1e-15)
	})

	t.Run("precise float", func(t *testing.T) {
		got, err := DecodeTree([]byte("0.1"), Options{PreciseFloat: true})
		require.NoError(t, err)
		assert.Equal(t, 0.1, got)
	})

	t.Run("precise float range error", func(t *testing.T) {
		_, err := DecodeTree([]byte("1e400"), Options{PreciseFloat: true})
		assert.ErrorIs(t, err, ErrRange)
	})

	t.Run("fast float overflows to infinity", func(t *testing.T) {
		got, err := DecodeTree([]byte("1e400"), Options{})
		require.NoError(t, err)
		assert.True(t, math.IsInf(got.(float64), 1))
	})
}

// recorder tracks container lifetimes to check that nothing is left open
// after a failed decode.
type recorder struct {
	kinds    []string
	live     map[int]bool
	released []int
}

func newRecorder() *recorder {
	return &recorder{live: map[int]bool{}}
}

func (r *recorder) add(kind string) int {
	r.kinds = append(r.kinds, kind)
	id := len(r.kinds) - 1
	if kind == "array" || kind == "object" {
		r.live[id] = true
	}
	return id
}

func (r *recorder) NewString([]byte) int { return r.add("string") }
func (r *recorder) NewInt(int32) int { return r.add("int") }
func (r *recorder) NewLong(int64) int { return r.add("long") }
func (r *recorder) NewUnsignedLong(uint64) int { return r.add("ulong") }
func (r *recorder) NewDouble(float64) int { return r.add("double") }
func (r *recorder) NewTrue() int { return r.add("true") }
func (r *recorder) NewFalse() int { return r.add("false") }
func (r *recorder) NewNull() int { return r.add("null") }
func (r *recorder) NewArray() int { return r.add("array") }
func (r *recorder) NewObject() int { return r.add("object") }
func (r *recorder) ArrayAddItem(int, int) {}
func (r *recorder) ObjectAddKey(int, int, int) {}
func (r *recorder) EndArray(arr int) int { delete(r.live, arr); return arr }
func (r *recorder) EndObject(obj int) int { delete(r.live, obj); return obj }
func (r *recorder) ReleaseObject(v int) { delete(r.live, v); r.released = append(r.released, v) }

func TestDecodeReleasesOnError(t *testing.T) {
	inputs := []string{
		`[1, [2, {"a": [3, x]}]]`,
		`{"a": [1, 2], "b": {"c": tru}}`,
		`[[1], [2], "\uD800"]`,
		`{"a" 1}`,
		`[1, 2] 3`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			r := newRecorder()
			_, err := Decode[int](r, []byte(input), Options{})
			require.Error(t, err)
			assert.Empty(t, r.live, "containers left open")
			assert.NotEmpty(t, r.released)
		})
	}
}

func TestDecodeIntegerWidening(t *testing.T) {
	tests := []struct {
		input string
		kind  string
	}{
		{"0", "int"},
		{"-2147483647", "int"},
		{"2147483647", "int"},
		{"2147483648", "long"},
		{"-2147483648", "long"},
		{"9223372036854775807", "long"},
		{"9223372036854775808", "ulong"},
		{"-9223372036854775808", "long"},
		{"1.0", "double"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r := newRecorder()
			id, err := Decode[int](r, []byte(tt.input), Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.kind, r.kinds[id])
		})
	}
}

type keyRecorder struct {
	*recorder
	keys []string
}

func (k *keyRecorder) NewKey(s []byte) int {
	k.keys = append(k.keys, string(s))
	return k.add("key")
}

func TestDecodeKeyDecoder(t *testing.T) {
	k := &keyRecorder{recorder: newRecorder()}
	_, err := Decode[int](k, []byte(`{"one": "x", "two": {"three": 3}}`), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, k.keys)

	values := 0
	for _, kind := range k.kinds {
		if kind == "string" {
			values++
		}
	}
	assert.Equal(t, 1, values)
}

type failingAllocator struct{}

func (failingAllocator) Alloc(int) ([]byte, error) { return nil, errors.New("out of memory") }
func (failingAllocator) Realloc([]byte, int) ([]byte, error) { return nil, errors.New("out of memory") }
func (failingAllocator) Free([]byte) {}

type countingAllocator struct {
	HeapAllocator
	allocs, reallocs, frees int
}

func (c *countingAllocator) Alloc(n int) ([]byte, error) {
	c.allocs++
	return c.HeapAllocator.Alloc(n)
}

func (c *countingAllocator) Realloc(b []byte, n int) ([]byte, error) {
	c.reallocs++
	return c.HeapAllocator.Realloc(b, n)
}

func (c *countingAllocator) Free(b []byte) {
	c.frees++
}

func TestDecodeScratchAllocator(t *testing.T) {
	long := `"` + strings.Repeat("x", 4*inlineScratch) + `"`

	t.Run("short strings stay inline", func(t *testing.T) {
		got, err := DecodeTree([]byte(`"short"`), Options{Allocator: failingAllocator{}})
		require.NoError(t, err)
		assert.Equal(t, "short", got)
	})

	t.Run("large document of short strings stays inline", func(t *testing.T) {
		doc := "[" + strings.Repeat(`"a",`, 600) + `"a"]`
		require.Greater(t, len(doc), inlineScratch)

		got, err := DecodeTree([]byte(doc), Options{Allocator: failingAllocator{}})
		require.NoError(t, err)
		assert.Len(t, got, 601)
	})

	t.Run("string just past the inline space", func(t *testing.T) {
		s := strings.Repeat("y", inlineScratch+1)
		counting := &countingAllocator{}
		got, err := DecodeTree([]byte(`["`+s+`","b"]`), Options{Allocator: counting})
		require.NoError(t, err)
		assert.Equal(t, []any{s, "b"}, got)
		assert.Equal(t, 1, counting.allocs)
		assert.Equal(t, 1, counting.frees)
	})

	t.Run("allocation failure", func(t *testing.T) {
		_, err := DecodeTree([]byte(long), Options{Allocator: failingAllocator{}})
		assert.ErrorIs(t, err, ErrAlloc)
	})

	t.Run("pool allocator", func(t *testing.T) {
		pool := &PoolAllocator{}
		for i := 0; i < 3; i++ {
			got, err := DecodeTree([]byte(long), Options{Allocator: pool})
			require.NoError(t, err)
			assert.Len(t, got, 4*inlineScratch)
		}
	})
}
