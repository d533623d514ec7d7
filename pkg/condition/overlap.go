package condition

// Overlap is an unordered pair of conflicting rules, reported once with
// First in input order.
type Overlap struct {
	First  Rule
	Second Rule
}

// DetectOverlaps compares every unordered pair of rules in one queue and
// reports the pairs whose resolved intervals intersect. Sentinel rules and
// rules whose interval cannot be resolved are skipped; validating individual
// rules is the caller's job. Output order is deterministic: pairs appear in
// the order the first rule was encountered, ties broken by the second rule's
// position.
func DetectOverlaps(rules []Rule) []Overlap {
	type resolved struct {
		rule Rule
		iv   Interval
	}

	candidates := make([]resolved, 0, len(rules))
	for _, r := range rules {
		iv, err := Resolve(r)
		if err != nil || iv == nil {
			continue
		}
		candidates = append(candidates, resolved{rule: r, iv: *iv})
	}

	var overlaps []Overlap
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[i].iv.Overlaps(candidates[j].iv) {
				overlaps = append(overlaps, Overlap{
					First:  candidates[i].rule,
					Second: candidates[j].rule,
				})
			}
		}
	}
	return overlaps
}

// DetectDuplicateDefaults reports pairs of DEFAULT rules. The store keeps at
// most one DEFAULT per queue, but a violated constraint is a displayable
// conflict here, not a crash.
func DetectDuplicateDefaults(rules []Rule) []Overlap {
	var defaults []Rule
	for _, r := range rules {
		if r.Kind == KindDefault {
			defaults = append(defaults, r)
		}
	}

	var overlaps []Overlap
	for i := 0; i < len(defaults); i++ {
		for j := i + 1; j < len(defaults); j++ {
			overlaps = append(overlaps, Overlap{First: defaults[i], Second: defaults[j]})
		}
	}
	return overlaps
}
