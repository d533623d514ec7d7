package condition

import "fmt"

// TemplateInfo carries the label half of a message template, enough to name
// it in a conflict description.
type TemplateInfo struct {
	ID    string
	Title string
}

const missingTemplateLabel = "unknown template"

// DescribeOverlaps renders one human-readable line per conflicting pair for
// confirmation dialogs, e.g.
// "conflict: Template A (GREATER 5) and Template B (RANGE 3-10)".
// A template id absent from the lookup map gets a placeholder label; this is
// a display helper and never fails.
func DescribeOverlaps(overlaps []Overlap, templatesByID map[string]TemplateInfo) []string {
	if len(overlaps) == 0 {
		return nil
	}

	lines := make([]string, 0, len(overlaps))
	for _, o := range overlaps {
		lines = append(lines, fmt.Sprintf("conflict: %s (%s) and %s (%s)",
			templateTitle(o.First.TemplateID, templatesByID), o.First.Describe(),
			templateTitle(o.Second.TemplateID, templatesByID), o.Second.Describe(),
		))
	}
	return lines
}

func templateTitle(id string, templatesByID map[string]TemplateInfo) string {
	if t, ok := templatesByID[id]; ok && t.Title != "" {
		return t.Title
	}
	return missingTemplateLabel
}
