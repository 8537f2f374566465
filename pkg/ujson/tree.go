package ujson

// Tree is an ObjectDecoder that builds plain Go values: nil, bool, string,
// int64, uint64, float64, []any and map[string]any. Duplicate object keys
// keep the last value.
type Tree struct{}

// DecodeTree decodes data into a generic value.
func DecodeTree(data []byte, opts Options) (any, error) {
	return Decode[any](Tree{}, data, opts)
}

func (Tree) NewString(s []byte) any { return string(s) }
func (Tree) NewInt(v int32) any { return int64(v) }
func (Tree) NewLong(v int64) any { return v }
func (Tree) NewUnsignedLong(v uint64) any { return v }
func (Tree) NewDouble(v float64) any { return v }
func (Tree) NewTrue() any { return true }
func (Tree) NewFalse() any { return false }
func (Tree) NewNull() any { return nil }
func (Tree) NewArray() any { return &[]any{} }
func (Tree) NewObject() any { return map[string]any{} }
func (Tree) ReleaseObject(any) {}
func (Tree) EndObject(obj any) any { return obj }
func (Tree) ObjectAddKey(obj, key, value any) { obj.(map[string]any)[key.(string)] = value }

func (Tree) ArrayAddItem(arr, item any) {
	p := arr.(*[]any)
	*p = append(*p, item)
}

func (Tree) EndArray(arr any) any {
	return *arr.(*[]any)
}
