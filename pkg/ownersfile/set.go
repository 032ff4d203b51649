package ownersfile

import (
	"fmt"
	"regexp"
	"strings"

	f "github.com/multimediallc/owners-gen/pkg/functional"
)

// OwnersSet is the smallest unit of ownership declaration: a set of owner
// identifiers plus an inheritance flag. Inherit is tri-state; nil means
// "defer to the global default inheritance policy".
type OwnersSet struct {
	Inherit *bool
	Owners  f.Set[string]
}

func NewOwnersSet(owners ...string) *OwnersSet {
	return &OwnersSet{Owners: f.NewSetFrom(owners...)}
}

var setLineRE = regexp.MustCompile(`^set\s+(\w+)\s*=\s*(\w+)$`)

// MaybeProcessSet evaluates the line for `set <variable> = <value>` syntax.
// If found, the variable specified is updated to match the value specified.
// Returns whether the line was a set line.
func (os *OwnersSet) MaybeProcessSet(line string) (bool, error) {
	if !strings.HasPrefix(line, "set ") {
		return false, nil
	}
	m := setLineRE.FindStringSubmatch(line)
	if m == nil {
		return false, fmt.Errorf("invalid set format %q: expected 'set <variable> = <value>'", line)
	}
	variable, value := m[1], m[2]
	switch variable {
	case "inherit":
		switch value {
		case "true":
			os.Inherit = boolPtr(true)
		case "false":
			os.Inherit = boolPtr(false)
		default:
			return false, fmt.Errorf("invalid value for inherit %q: must be 'true' or 'false'", value)
		}
	default:
		return false, fmt.Errorf("invalid set variable %q", variable)
	}
	return true, nil
}

// Equals compares flag and owner contents.
func (os *OwnersSet) Equals(other *OwnersSet) bool {
	if (os.Inherit == nil) != (other.Inherit == nil) {
		return false
	}
	if os.Inherit != nil && *os.Inherit != *other.Inherit {
		return false
	}
	return os.Owners.Equals(other.Owners)
}

func boolPtr(b bool) *bool {
	return &b
}
