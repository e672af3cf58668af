package categorizer

import (
	"fmt"
	"sort"
	"strings"
)

// Stats summarizes one categorization pass.
type Stats struct {
	Evaluated      int
	Hits           int
	HitsByStrategy map[string]int
}

func newStats() Stats {
	return Stats{HitsByStrategy: make(map[string]int)}
}

// Unmatched returns the number of transactions no rule applied to.
func (s Stats) Unmatched() int {
	return s.Evaluated - s.Hits
}

// Summary returns a human-readable summary of the pass.
func (s Stats) Summary() string {
	names := make([]string, 0, len(s.HitsByStrategy))
	for name := range s.HitsByStrategy {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%d", name, s.HitsByStrategy[name]))
	}
	return fmt.Sprintf("%d/%d matched (%s)", s.Hits, s.Evaluated, strings.Join(parts, ", "))
}
