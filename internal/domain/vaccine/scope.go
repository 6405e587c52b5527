package vaccine

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Scope is a bitset over the logical fields of a record, one bit per field.
type Scope uint32

const (
	ScopeVaccineType Scope = 1 << iota
	ScopeManufacturer
	ScopeDate
	ScopeSite
	ScopeBatch
	ScopeDoctor
	ScopeNotes

	ScopeAll = ScopeVaccineType | ScopeManufacturer | ScopeDate | ScopeSite | ScopeBatch | ScopeDoctor | ScopeNotes
)

var scopeNames = []struct {
	bit  Scope
	name string
}{
	{ScopeVaccineType, "type"},
	{ScopeManufacturer, "manufacturer"},
	{ScopeDate, "date"},
	{ScopeSite, "site"},
	{ScopeBatch, "batch"},
	{ScopeDoctor, "doctor"},
	{ScopeNotes, "notes"},
}

// Valid reports whether s is non-empty and uses only defined field bits.
func (s Scope) Valid() bool {
	return s != 0 && s&^ScopeAll == 0
}

// Contains reports whether every field of other is also in s.
func (s Scope) Contains(other Scope) bool {
	return other&^s == 0
}

// Len is the number of fields in s.
func (s Scope) Len() int {
	return bits.OnesCount32(uint32(s))
}

func (s Scope) String() string {
	if s == ScopeAll {
		return "all"
	}
	names := make([]string, 0, len(scopeNames))
	for _, n := range scopeNames {
		if s&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	if rest := s &^ ScopeAll; rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, ",")
}

// ParseScope accepts "all", a comma separated list of field names, or a
// numeric mask ("31", "0b11111", "0x1f").
func ParseScope(s string) (Scope, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidScope)
	}
	if s == "all" {
		return ScopeAll, nil
	}
	if n, err := strconv.ParseUint(s, 0, 32); err == nil {
		sc := Scope(n)
		if !sc.Valid() {
			return 0, fmt.Errorf("%w: %s", ErrInvalidScope, s)
		}
		return sc, nil
	}

	var sc Scope
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		found := false
		for _, n := range scopeNames {
			if n.name == part {
				sc |= n.bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: unknown field %q", ErrInvalidScope, part)
		}
	}
	return sc, nil
}
