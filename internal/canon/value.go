package canon

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed set of canonical JSON values. There is no float type.
type Value interface {
	canonValue()
}

type (
	String string
	Int    int64
	Bool   bool
	Array  []Value
	Object map[string]Value
)

func (String) canonValue() {}
func (Int) canonValue()    {}
func (Bool) canonValue()   {}
func (Array) canonValue()  {}
func (Object) canonValue() {}

// SortedKeys returns the object's keys in UTF-16 code unit order.
// Go's native string order compares UTF-8 bytes and differs for
// supplementary-plane characters.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
