package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"matka-backend/internal/models"
)

// ErrInvalidValue is returned when a bid value matches none of the
// reference sets.
var ErrInvalidValue = errors.New("invalid bid value")

// Catalog holds the immutable digit/panna reference sets. Build it once at
// startup with New and pass it by reference; nothing mutates it afterwards.
type Catalog struct {
	singleDigit map[string]struct{}
	jodi        map[string]struct{}
	singlePanna map[string]struct{}
	doublePanna map[string]struct{}
	triplePanna map[string]struct{}
}

func New() *Catalog {
	c := &Catalog{
		singleDigit: make(map[string]struct{}, 10),
		jodi:        make(map[string]struct{}, 100),
		singlePanna: make(map[string]struct{}, 120),
		doublePanna: make(map[string]struct{}, 90),
		triplePanna: make(map[string]struct{}, 10),
	}

	for d := 0; d <= 9; d++ {
		c.singleDigit[fmt.Sprintf("%d", d)] = struct{}{}
		c.triplePanna[fmt.Sprintf("%d%d%d", d, d, d)] = struct{}{}
	}
	for j := 0; j <= 99; j++ {
		c.jodi[fmt.Sprintf("%02d", j)] = struct{}{}
	}

	// Pannas are written with their digits in ascending order, except that
	// 0 sorts after 9 (so 1-2-0 is "120", not "012"). Single panna: three
	// distinct digits. Double panna: exactly one repeated digit.
	for a := 0; a <= 9; a++ {
		for b := a + 1; b <= 9; b++ {
			c.doublePanna[canonicalPanna(a, a, b)] = struct{}{}
			c.doublePanna[canonicalPanna(a, b, b)] = struct{}{}
			for d := b + 1; d <= 9; d++ {
				c.singlePanna[canonicalPanna(a, b, d)] = struct{}{}
			}
		}
	}

	return c
}

// canonicalPanna orders three digits ascending with 0 weighted as 10.
func canonicalPanna(digits ...int) string {
	sort.Slice(digits, func(i, j int) bool {
		return pannaWeight(digits[i]) < pannaWeight(digits[j])
	})
	var sb strings.Builder
	for _, d := range digits {
		fmt.Fprintf(&sb, "%d", d)
	}
	return sb.String()
}

func pannaWeight(d int) int {
	if d == 0 {
		return 10
	}
	return d
}

// Classify maps a raw bid value onto its bid kind, or fails with
// ErrInvalidValue when the value belongs to no reference set.
func (c *Catalog) Classify(value string) (models.BidKind, error) {
	switch len(value) {
	case 1:
		if _, ok := c.singleDigit[value]; ok {
			return models.BidKindSingleDigit, nil
		}
	case 2:
		if _, ok := c.jodi[value]; ok {
			return models.BidKindJodi, nil
		}
	case 3:
		if _, ok := c.triplePanna[value]; ok {
			return models.BidKindTriplePanna, nil
		}
		if _, ok := c.doublePanna[value]; ok {
			return models.BidKindDoublePanna, nil
		}
		if _, ok := c.singlePanna[value]; ok {
			return models.BidKindSinglePanna, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidValue, value)
}

// IsValid reports whether value is a member of the reference set for kind.
func (c *Catalog) IsValid(kind models.BidKind, value string) bool {
	set, ok := c.set(kind)
	if !ok {
		return false
	}
	_, member := set[value]
	return member
}

func (c *Catalog) set(kind models.BidKind) (map[string]struct{}, bool) {
	switch kind {
	case models.BidKindSingleDigit:
		return c.singleDigit, true
	case models.BidKindJodi:
		return c.jodi, true
	case models.BidKindSinglePanna:
		return c.singlePanna, true
	case models.BidKindDoublePanna:
		return c.doublePanna, true
	case models.BidKindTriplePanna:
		return c.triplePanna, true
	default:
		return nil, false
	}
}

// Members returns the sorted reference set for kind, for the admin catalog
// endpoints the bid forms are populated from.
func (c *Catalog) Members(kind models.BidKind) []string {
	set, ok := c.set(kind)
	if !ok {
		return nil
	}
	members := make([]string, 0, len(set))
	for v := range set {
		members = append(members, v)
	}
	sort.Strings(members)
	return members
}

// PannaDigit derives the single digit a panna settles to: the digit sum
// mod 10. Used to fill in the result digit when an admin declares a panna.
func PannaDigit(panna string) (string, error) {
	if len(panna) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidValue, panna)
	}
	sum := 0
	for _, r := range panna {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidValue, panna)
		}
		sum += int(r - '0')
	}
	return fmt.Sprintf("%d", sum%10), nil
}
