package blob

// Signatures describe the shape of a record's children:
//
//	i      INT32 or INT8
//	s      STRING
//	t      TABLE
//	a      ARRAY
//	v      any type
//	{...}  TABLE whose children match the enclosed signature
//	[...]  ARRAY whose children match the enclosed signature
//
// A level restarts its signature from the beginning while children remain,
// so "i" accepts any number of integers and "ss" any number of string pairs.

// Validate reports whether the children of f match sig. A field without
// children never validates, even against a signature that would accept an
// empty nested level.
func Validate(f Field, sig string) bool {
	return validateLevel(f, sig, true)
}

// Parse validates f against sig and on success stores its children, in
// order, into out. Children beyond len(out) are dropped. Entries of out that
// receive no child are set to the null field.
func Parse(f Field, sig string, out []Field) bool {
	clear(out)
	if !Validate(f, sig) {
		return false
	}
	i := 0
	for c := f.FirstChild(); !c.IsNil() && i < len(out); c = f.NextChild(c) {
		out[i] = c
		i++
	}
	return true
}

func validateLevel(parent Field, sig string, top bool) bool {
	child := parent.FirstChild()
	if child.IsNil() {
		return !top
	}
	if sig == "" {
		return true
	}
	k := 0
	for !child.IsNil() {
		if k >= len(sig) {
			k = 0
		}
		switch sig[k] {
		case '{', '[':
			want := TypeTable
			if sig[k] == '[' {
				want = TypeArray
			}
			end := closingBracket(sig, k)
			if end < 0 || child.Type() != want {
				return false
			}
			if !validateLevel(child, sig[k+1:end], false) {
				return false
			}
			k = end
		case 'i':
			if t := child.Type(); t != TypeInt32 && t != TypeInt8 {
				return false
			}
		case 's':
			if child.Type() != TypeString {
				return false
			}
		case 't':
			if child.Type() != TypeTable {
				return false
			}
		case 'a':
			if child.Type() != TypeArray {
				return false
			}
		case 'v':
		default:
			return false
		}
		k++
		child = parent.NextChild(child)
	}
	return true
}

// closingBracket returns the index of the bracket closing the one at
// sig[open], or -1 when the signature is unbalanced.
func closingBracket(sig string, open int) int {
	var stack []byte
	for i := open; i < len(sig); i++ {
		switch c := sig[i]; c {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// Policy names a value expected in a key/value table.
type Policy struct {
	Name string
	Type Type // TypeUnspec accepts any type
}

// ForEachKV walks a key/value table, calling fn with each key and its value
// until fn returns false. A trailing key without a value is not visited.
func (f Field) ForEachKV(fn func(key, value Field) bool) {
	for key := f.FirstChild(); !key.IsNil(); {
		value := f.NextChild(key)
		if value.IsNil() || !fn(key, value) {
			return
		}
		key = f.NextChild(value)
	}
}

// ParseValues looks up policy names among the STRING keys of a key/value
// table and stores the matching values in out at the policy's index. It
// returns the number of policies satisfied; the last duplicate key wins.
func ParseValues(table Field, policies []Policy, out []Field) int {
	n := min(len(policies), len(out))
	clear(out[:n])
	found := 0
	table.ForEachKV(func(key, value Field) bool {
		if key.Type() != TypeString {
			return true
		}
		name := key.GetString()
		for i := 0; i < n; i++ {
			p := policies[i]
			if p.Name != name {
				continue
			}
			if p.Type != TypeUnspec && p.Type != value.Type() {
				continue
			}
			if out[i].IsNil() {
				found++
			}
			out[i] = value
		}
		return true
	})
	return found
}
