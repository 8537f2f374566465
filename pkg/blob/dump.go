package blob

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented, one-record-per-line listing of f and its
// children. Named records are prefixed with their name.
func Dump(w io.Writer, f Field) error {
	return dump(w, f, 0)
}

func dump(w io.Writer, f Field, depth int) error {
	indent := strings.Repeat("  ", depth)
	if f.IsNil() {
		_, err := fmt.Fprintf(w, "%s(nil)\n", indent)
		return err
	}
	prefix := indent
	if f.HasName() {
		prefix += fmt.Sprintf("%q: ", f.Name())
	}

	var err error
	switch t := f.Type(); t {
	case TypeArray, TypeTable:
		_, err = fmt.Fprintf(w, "%s%s (%d bytes)\n", prefix, t, f.RawLen())
		for c := f.FirstChild(); err == nil && !c.IsNil(); c = f.NextChild(c) {
			err = dump(w, c, depth+1)
		}
	case TypeString:
		_, err = fmt.Fprintf(w, "%sstring %q\n", prefix, f.GetString())
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		_, err = fmt.Fprintf(w, "%s%s %d\n", prefix, t, f.GetInt())
	case TypeFloat32, TypeFloat64:
		_, err = fmt.Fprintf(w, "%s%s %g\n", prefix, t, f.GetReal())
	default:
		_, err = fmt.Fprintf(w, "%s%s (%d bytes)\n", prefix, t, len(f.Payload()))
	}
	return err
}
