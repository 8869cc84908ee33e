package sync

import (
	"reflect"
	"sort"
)

// ConflictKey wraps a field value whose local and remote edits collided.
// The wrapper shape is {"__conflict": {"local": ..., "remote": ...}} so an
// operator can resolve it in place; a nil side means that side removed the
// field.
const ConflictKey = "__conflict"

// MergeFields reconciles two independent edits of a structured record at the
// field level. A field changed by exactly one side takes that side's value,
// including removal. Fields changed differently by both sides get a conflict
// wrapper and bump the returned count.
func MergeFields(base, local, remote map[string]any) (map[string]any, int) {
	merged := make(map[string]any)
	conflicts := 0

	for _, key := range unionKeys(base, local, remote) {
		bv, bok := base[key]
		lv, lok := local[key]
		rv, rok := remote[key]

		localChanged := !valueEqual(bv, bok, lv, lok)
		remoteChanged := !valueEqual(bv, bok, rv, rok)

		switch {
		case !localChanged && !remoteChanged:
			if bok {
				merged[key] = bv
			}
		case localChanged && !remoteChanged:
			if lok {
				merged[key] = lv
			}
		case !localChanged && remoteChanged:
			if rok {
				merged[key] = rv
			}
		default:
			if valueEqual(lv, lok, rv, rok) {
				if lok {
					merged[key] = lv
				}
				continue
			}
			merged[key] = map[string]any{
				ConflictKey: map[string]any{"local": lv, "remote": rv},
			}
			conflicts++
		}
	}

	return merged, conflicts
}

func valueEqual(a any, aok bool, b any, bok bool) bool {
	if aok != bok {
		return false
	}
	if !aok {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func unionKeys(maps ...map[string]any) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range maps {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
