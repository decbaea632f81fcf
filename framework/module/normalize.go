package module

import "reflect"

// Flatten turns a single module-like item or a collection of them into a
// new slice of items. Strings, *Module values and Refs are single items;
// slices and arrays (except []byte) are expanded; nil yields no items.
func Flatten(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case string, *Module, Ref, []byte:
		return []any{x}
	case []any:
		return append([]any(nil), x...)
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []*Module:
		out := make([]any, len(x))
		for i, m := range x {
			out[i] = m
		}
		return out
	case []Ref:
		out := make([]any, len(x))
		for i, r := range x {
			out[i] = r
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k == reflect.Slice || k == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}

// Normalize resolves v (see Flatten) to modules and drops later duplicates
// by name, keeping first-seen order. The first resolution error is returned
// unchanged; user-declared modules are mandatory.
func Normalize(cat *Catalog, v any) ([]*Module, error) {
	items := Flatten(v)
	mods := make([]*Module, 0, len(items))
	for _, item := range items {
		m, err := ToRef(item).Resolve(cat)
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return Dedupe(mods), nil
}

// Dedupe returns a new slice keeping only the first module of each name.
func Dedupe(mods []*Module) []*Module {
	seen := make(map[string]bool, len(mods))
	out := make([]*Module, 0, len(mods))
	for _, m := range mods {
		if seen[m.Name()] {
			continue
		}
		seen[m.Name()] = true
		out = append(out, m)
	}
	return out
}
