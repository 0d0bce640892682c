package flatdb

import (
	"fmt"
	"strings"
)

// Mode says how Find combines criteria
type Mode int

const (
	// And matches records whose insurance types contain every criterion
	And Mode = iota
	// Or matches records whose insurance types contain at least one criterion
	Or
)

func (m Mode) String() string {
	switch m {
	case And:
		return "and"
	case Or:
		return "or"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "and" or "or", ignoring case
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and":
		return And, nil
	case "or":
		return Or, nil
	}
	return And, fmt.Errorf("invalid search mode '%s', expected 'and' or 'or'", s)
}

// criteria are lower-cased once per search
func foldCriteria(criteria []string) []string {
	res := make([]string, len(criteria))
	for i, c := range criteria {
		res[i] = strings.ToLower(c)
	}
	return res
}

// matches reports if the folded searchable field satisfies criteria.
// With no criteria And matches everything and Or matches nothing.
func matches(field string, criteria []string, mode Mode) bool {
	if mode == Or {
		for _, c := range criteria {
			if strings.Contains(field, c) {
				return true
			}
		}
		return false
	}
	for _, c := range criteria {
		if !strings.Contains(field, c) {
			return false
		}
	}
	return true
}

// find scans all slots and returns ids of matching active records
// in ascending order
func find(ls *lineSource, criteria []string, mode Mode) ([]int, error) {
	folded := foldCriteria(criteria)
	var ids []int
	for slot := range ls.Slots() {
		field, ok := slot.searchable()
		if !ok {
			continue
		}
		if matches(field, folded, mode) {
			ids = append(ids, slot.ID)
		}
	}
	if err := ls.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
