package insurance

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/kjk/insurancedb/flatdb"
)

// Company is a record of the database
type Company struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Telephone      string  `json:"telephone"`
	URL            string  `json:"url"`
	InsuranceTypes string  `json:"insuranceTypes"`
	Percentage     float64 `json:"percentage"`
	Description    string  `json:"description"`

	// percentage as read from the database, written back unchanged
	// as long as Percentage isn't changed
	percentageText string
}

// FromFields creates a Company from fields as stored in flatdb
func FromFields(id int, fields []string) (*Company, error) {
	if len(fields) != flatdb.NumFields {
		return nil, fmt.Errorf("record %d: expected %d fields, got %d", id, flatdb.NumFields, len(fields))
	}
	p, err := ParsePercentage(fields[flatdb.FieldPercentage])
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", id, err)
	}
	return &Company{
		ID:             id,
		Name:           fields[flatdb.FieldName],
		Telephone:      fields[flatdb.FieldTelephone],
		URL:            fields[flatdb.FieldURL],
		InsuranceTypes: fields[flatdb.FieldInsuranceTypes],
		Percentage:     p,
		Description:    fields[flatdb.FieldDescription],
		percentageText: fields[flatdb.FieldPercentage],
	}, nil
}

// ParsePercentage parses broker percentage e.g. "12.5" or "12.5%"
func ParsePercentage(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage '%s'", s)
	}
	return p, nil
}

// Fields returns c in the order stored by flatdb
func (c *Company) Fields() []string {
	res := make([]string, flatdb.NumFields)
	res[flatdb.FieldName] = c.Name
	res[flatdb.FieldTelephone] = c.Telephone
	res[flatdb.FieldURL] = c.URL
	res[flatdb.FieldInsuranceTypes] = c.InsuranceTypes
	res[flatdb.FieldPercentage] = c.percentageField()
	res[flatdb.FieldDescription] = c.Description
	return res
}

func (c *Company) percentageField() string {
	if c.percentageText != "" {
		if p, err := ParsePercentage(c.percentageText); err == nil && p == c.Percentage {
			return c.percentageText
		}
	}
	return strconv.FormatFloat(c.Percentage, 'f', -1, 64)
}

func (c *Company) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Company:             %s\n", c.Name)
	fmt.Fprintf(&sb, "Telephone:           %s\n", c.Telephone)
	fmt.Fprintf(&sb, "Web address:         %s\n", c.URL)
	fmt.Fprintf(&sb, "Types of insurance:  %s\n", c.InsuranceTypes)
	fmt.Fprintf(&sb, "Broker percentage:   %s\n", c.percentageField())
	fmt.Fprintf(&sb, "General description: %s\n", c.Description)
	return sb.String()
}

// SortStrategy orders companies, like cmp.Compare
type SortStrategy func(a, b *Company) int

func ByID(a, b *Company) int {
	return cmp.Compare(a.ID, b.ID)
}

// ByName compares names ignoring case
func ByName(a, b *Company) int {
	if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return ByID(a, b)
}

func ByPercentage(a, b *Company) int {
	if c := cmp.Compare(a.Percentage, b.Percentage); c != 0 {
		return c
	}
	return ByID(a, b)
}

// SortStrategyByName returns a strategy for "id", "name" or "percentage"
func SortStrategyByName(name string) (SortStrategy, error) {
	switch strings.ToLower(name) {
	case "", "id":
		return ByID, nil
	case "name":
		return ByName, nil
	case "percentage", "percent":
		return ByPercentage, nil
	}
	return nil, fmt.Errorf("unknown sort order '%s', expected id, name or percentage", name)
}

// ParseQuery splits a search query like "fire and theft" into criteria
// and search mode. Words "and" and "or" set the mode (the last one wins)
// and default mode is flatdb.Or.
func ParseQuery(query string) ([]string, flatdb.Mode) {
	mode := flatdb.Or
	var criteria []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		switch w {
		case "and":
			mode = flatdb.And
		case "or":
			mode = flatdb.Or
		default:
			criteria = append(criteria, w)
		}
	}
	return criteria, mode
}
