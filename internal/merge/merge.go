// Package merge collapses raw task records that describe the same property
// on the same calendar day into a single record. Upstream seeding (or a
// future multi-source import) can produce a checkout record and a check-in
// record for one physical job; the store runs every load through Tasks so
// its committed state never holds two records for one (date, title) pair.
package merge

import (
	"sort"

	"mzstay/internal/domain"
)

type groupKey struct {
	date  string
	title string
}

// Tasks returns one task per distinct (date, title) pair. Output order is
// unspecified; callers that need order must sort. Groups of size 1 pass
// through unchanged. The function is pure: inputs are not mutated.
func Tasks(raw []domain.Task) []domain.Task {
	if len(raw) == 0 {
		return []domain.Task{}
	}
	groups := make(map[groupKey][]domain.Task)
	var order []groupKey
	for _, t := range raw {
		k := groupKey{date: t.Date, title: t.Title}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], t)
	}
	out := make([]domain.Task, 0, len(order))
	for _, k := range order {
		out = append(out, mergeGroup(groups[k]))
	}
	return out
}

// mergeGroup folds a same-(date,title) group into one record. The base is
// the member with the ordinally smallest ID, which makes the result
// independent of input order: the same group merges identically on every
// reload.
func mergeGroup(group []domain.Task) domain.Task {
	if len(group) == 1 {
		return group[0]
	}
	sorted := make([]domain.Task, len(group))
	copy(sorted, group)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	merged := sorted[0]
	// Status: the least-complete status wins. If any split record says work
	// is still outstanding, the merged task must not hide that.
	for _, t := range sorted[1:] {
		if t.Status.Rank() < merged.Status.Rank() {
			merged.Status = t.Status
		}
		merged.HasCheckout = merged.HasCheckout || t.HasCheckout
		merged.HasCheckin = merged.HasCheckin || t.HasCheckin
	}
	// Checkout: latest time across members that actually have a checkout.
	// Check-in: earliest, since the next guest's arrival is the binding
	// constraint. HH:MM strings compare correctly as strings.
	if latest, ok := foldTime(sorted, func(t domain.Task) (string, bool) {
		return t.CheckoutTime, t.HasCheckout
	}, func(a, b string) bool { return a > b }); ok {
		merged.CheckoutTime = latest
	}
	if earliest, ok := foldTime(sorted, func(t domain.Task) (string, bool) {
		return t.NextCheckinTime, t.HasCheckin
	}, func(a, b string) bool { return a < b }); ok {
		merged.NextCheckinTime = earliest
	}
	// Fill-in-the-blank fields: the base's value if present, else the first
	// member in original iteration order that has one. Conflicts are not
	// expected in well-formed data.
	merged.Region = firstNonEmpty(merged.Region, group, func(t domain.Task) string { return t.Region })
	merged.Address = firstNonEmpty(merged.Address, group, func(t domain.Task) string { return t.Address })
	merged.UnitType = firstNonEmpty(merged.UnitType, group, func(t domain.Task) string { return t.UnitType })
	merged.GuideURL = firstNonEmpty(merged.GuideURL, group, func(t domain.Task) string { return t.GuideURL })
	merged.NewCode = firstNonEmpty(merged.NewCode, group, func(t domain.Task) string { return t.NewCode })
	merged.OldCode = firstNonEmpty(merged.OldCode, group, func(t domain.Task) string { return t.OldCode })
	merged.MasterCode = firstNonEmpty(merged.MasterCode, group, func(t domain.Task) string { return t.MasterCode })
	merged.KeypadCode = firstNonEmpty(merged.KeypadCode, group, func(t domain.Task) string { return t.KeypadCode })
	// ID, key photo and completion metadata stay the base's: the merge never
	// synthesizes evidence from non-base members.
	return merged
}

func foldTime(group []domain.Task, field func(domain.Task) (string, bool), better func(a, b string) bool) (string, bool) {
	best := ""
	found := false
	for _, t := range group {
		v, flagged := field(t)
		if !flagged || v == "" {
			continue
		}
		if !found || better(v, best) {
			best = v
			found = true
		}
	}
	return best, found
}

func firstNonEmpty(base string, group []domain.Task, field func(domain.Task) string) string {
	if base != "" {
		return base
	}
	for _, t := range group {
		if v := field(t); v != "" {
			return v
		}
	}
	return ""
}
