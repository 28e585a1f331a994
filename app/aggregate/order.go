package aggregate

import (
	"sort"
	"strings"

	"github.com/deepbluedave/csv-visualiser-sub000/app/query"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

// Group ordering modes
const (
	OrderKeyAsc    = "keyasc"
	OrderKeyDesc   = "keydesc"
	OrderCountAsc  = "countasc"
	OrderCountDesc = "countdesc"
)

// OrderKeys returns the group keys in presentation order. A predefined order
// puts its listed keys first, in list order; every other key, and every key of
// an unset or unknown mode, is ordered by key. Count modes break ties by key.
func OrderKeys(groups *Groups, by settings.GroupSortBy) []string {
	keys := append([]string(nil), groups.Keys...)
	natural := query.NaturalSorter()
	byKey := func(i, j int) bool { return natural(keys[i], keys[j]) < 0 }

	if by.Order != nil {
		pos := make(map[string]int, len(by.Order))
		for i, k := range by.Order {
			if _, dup := pos[k]; !dup {
				pos[k] = i
			}
		}
		sort.SliceStable(keys, func(i, j int) bool {
			pi, iListed := pos[keys[i]]
			pj, jListed := pos[keys[j]]
			switch {
			case iListed && jListed:
				return pi < pj
			case iListed != jListed:
				return iListed
			default:
				return natural(keys[i], keys[j]) < 0
			}
		})
		return keys
	}

	sort.SliceStable(keys, byKey)
	switch strings.ToLower(strings.TrimSpace(by.Mode)) {
	case OrderKeyDesc:
		sort.SliceStable(keys, func(i, j int) bool { return natural(keys[i], keys[j]) > 0 })
	case OrderCountAsc:
		sort.SliceStable(keys, func(i, j int) bool { return groups.Count(keys[i]) < groups.Count(keys[j]) })
	case OrderCountDesc:
		sort.SliceStable(keys, func(i, j int) bool { return groups.Count(keys[i]) > groups.Count(keys[j]) })
	}
	return keys
}

// SortedKeys orders arbitrary keys naturally
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	natural := query.NaturalSorter()
	sort.SliceStable(keys, func(i, j int) bool {
		if c := natural(keys[i], keys[j]); c != 0 {
			return c < 0
		}
		return keys[i] < keys[j]
	})
	return keys
}
