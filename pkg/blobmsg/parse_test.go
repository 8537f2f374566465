package blobmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/blobpack/pkg/blob"
)

func TestCheckAttr(t *testing.T) {
	b := buildIface()
	for _, c := range b.Root().Children() {
		assert.True(t, CheckAttr(c, true), "child %q", Name(c))
	}
	assert.False(t, CheckAttr(b.Root(), false), "the root is unnamed")
	assert.False(t, CheckAttr(blob.Field{}, false))

	plain := blob.NewBuf(0, 0)
	assert.False(t, CheckAttr(plain.PutInt8(1), false), "records without a name header")

	anon := NewBuf(0, 0)
	f := anon.AddU8("", 1)
	assert.True(t, CheckAttr(f, false))
	assert.False(t, CheckAttr(f, true), "empty name where one is required")
}

func TestCheckAttrRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Buf) blob.Field
	}{
		{"short int32 payload", func(b *Buf) blob.Field {
			return b.AddField(blob.TypeInt32, "n", []byte{1, 2})
		}},
		{"string without nul", func(b *Buf) blob.Field {
			return b.AddField(blob.TypeString, "s", []byte("abc"))
		}},
		{"unknown type", func(b *Buf) blob.Field {
			return b.AddField(blob.Type(42), "x", nil)
		}},
		{"name not terminated", func(b *Buf) blob.Field {
			f := b.AddU8("abc", 1)
			f.Data()[2+3] = 'x'
			return f
		}},
		{"name overruns the record", func(b *Buf) blob.Field {
			f := b.AddU8("abc", 1)
			f.Data()[1] = 200
			return f
		}},
		{"bad nested child", func(b *Buf) blob.Field {
			c := b.OpenArray("list")
			b.AddField(blob.TypeInt64, "", []byte{1})
			b.CloseArray(c)
			return b.Root().FirstChild()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuf(0, 0)
			assert.False(t, CheckAttr(tt.build(b), false))
		})
	}
}

func TestCheckArray(t *testing.T) {
	b := buildIface()
	root := b.Root()
	addrs := root.Children()[3]

	assert.Equal(t, 5, CheckArray(root, blob.TypeUnspec))
	assert.Equal(t, 2, CheckArray(addrs, blob.TypeString))
	assert.Equal(t, -1, CheckArray(addrs, blob.TypeInt8))
	assert.Equal(t, -1, CheckArray(root.FirstChild(), blob.TypeUnspec), "not a container")
	assert.True(t, CheckAttrList(addrs, blob.TypeString))
	assert.False(t, CheckAttrList(root, blob.TypeString))

	anon := NewBuf(0, 0)
	anon.AddU8("", 1)
	assert.Equal(t, -1, CheckArray(anon.Root(), blob.TypeUnspec), "table children need names")
}

func TestParse(t *testing.T) {
	b := buildIface()
	b.AddString("name", "eth1")

	policies := []Policy{
		{Name: "name", Type: blob.TypeString},
		{Name: "mtu", Type: blob.TypeInt16},
		{Name: "up", Type: blob.TypeString},
		{Name: "missing"},
		{Name: "stats", Type: blob.TypeTable},
	}
	out := make([]blob.Field, len(policies))
	out[3] = b.Root()

	n, err := Parse(b.Root(), policies, out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "eth0", GetString(out[0]), "first match wins")
	assert.Equal(t, uint16(1500), GetU16(out[1]))
	assert.True(t, out[2].IsNil(), "type mismatch")
	assert.True(t, out[3].IsNil(), "slots are cleared")
	assert.Equal(t, 2, CheckArray(out[4], blob.TypeUnspec))
}

func TestParseInvalidAttr(t *testing.T) {
	b := NewBuf(0, 0)
	b.AddString("ok", "fine")
	b.AddField(blob.TypeInt32, "bad", []byte{1, 2})

	out := make([]blob.Field, 2)
	n, err := Parse(b.Root(), []Policy{{Name: "ok"}, {Name: "bad"}}, out)
	assert.ErrorIs(t, err, ErrInvalidAttr)
	assert.Zero(t, n)
	assert.True(t, out[0].IsNil())

	// a malformed child nobody asked for is ignored
	n, err = Parse(b.Root(), []Policy{{Name: "ok"}}, out[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestParseArray(t *testing.T) {
	b := NewBuf(0, 0)
	c := b.OpenArray("args")
	b.AddString("", "ping")
	b.AddU8("", 3)
	b.AddString("", "extra")
	b.CloseArray(c)
	args := b.Root().FirstChild()

	policies := []Policy{
		{Type: blob.TypeString},
		{Type: blob.TypeString},
	}
	out := make([]blob.Field, 2)
	n, err := ParseArray(args, policies, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "ping", GetString(out[0]))
	assert.True(t, out[1].IsNil())

	n, err = ParseArray(args, []Policy{{}, {Type: blob.TypeInt8}, {}}, make([]blob.Field, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
