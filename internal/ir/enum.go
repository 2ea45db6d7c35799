package ir

import (
	"sort"
	"strconv"
	"strings"
)

// ValuesByName maps upper-cased value names to numbers.
func (e Enum) ValuesByName() map[string]int32 {
	out := make(map[string]int32, len(e.Values))
	for _, v := range e.Values {
		key := strings.ToUpper(v.Name)
		if _, ok := out[key]; ok {
			continue
		}
		out[key] = v.Number
	}
	return out
}

// NamesByNumber maps decimal number keys to the first declared name.
// Aliases (allow_alias) resolve to the first value with that number.
func (e Enum) NamesByNumber() map[string]string {
	out := make(map[string]string, len(e.Values))
	for _, v := range e.Values {
		key := strconv.FormatInt(int64(v.Number), 10)
		if _, ok := out[key]; ok {
			continue
		}
		out[key] = v.Name
	}
	return out
}

// ZeroName is the name used when a value is absent or unknown.
func (e Enum) ZeroName() (string, bool) {
	name, ok := e.NamesByNumber()["0"]
	return name, ok
}

// SortedNames returns upper-cased names in lexical order.
func (e Enum) SortedNames() []string {
	byName := e.ValuesByName()
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedNumbers returns the distinct numbers in ascending order.
func (e Enum) SortedNumbers() []int32 {
	seen := make(map[int32]bool, len(e.Values))
	var nums []int32
	for _, v := range e.Values {
		if seen[v.Number] {
			continue
		}
		seen[v.Number] = true
		nums = append(nums, v.Number)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}

// Lookup resolves a label case-insensitively.
func (e Enum) Lookup(label string) (int32, bool) {
	n, ok := e.ValuesByName()[strings.ToUpper(strings.TrimSpace(label))]
	return n, ok
}

// Label resolves a wire number to a name, falling back to the zero
// value's name. It reports false when neither exists and the caller
// should keep the raw number.
func (e Enum) Label(number int64) (string, bool) {
	names := e.NamesByNumber()
	if name, ok := names[strconv.FormatInt(number, 10)]; ok {
		return name, true
	}
	if name, ok := names["0"]; ok {
		return name, true
	}
	return "", false
}
