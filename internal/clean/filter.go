package clean

import "github.com/KaramelBytes/smelens-cli/internal/table"

// Filter keeps only rows whose value in each constrained column is in that
// column's allowed set. Columns absent from the table and empty allowed sets
// impose no constraint. The input table is not modified.
func Filter(t *table.Table, keep map[string][]string) *table.Table {
	type constraint struct {
		vals    []string
		allowed map[string]bool
	}
	var active []constraint
	for col, allowed := range keep {
		if len(allowed) == 0 {
			continue
		}
		vals, ok := t.Strings(col)
		if !ok {
			continue
		}
		set := make(map[string]bool, len(allowed))
		for _, v := range allowed {
			set[v] = true
		}
		active = append(active, constraint{vals: vals, allowed: set})
	}
	if len(active) == 0 {
		return t.Clone()
	}

	var idx []int
	for i := 0; i < t.Len(); i++ {
		ok := true
		for _, c := range active {
			if !c.allowed[c.vals[i]] {
				ok = false
				break
			}
		}
		if ok {
			idx = append(idx, i)
		}
	}
	return t.SelectRows(idx)
}
