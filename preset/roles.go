package preset

import (
	"errors"
	"fmt"
	"sort"
)

// Role is a semantic column role a preset groups or sorts by.
type Role string

const (
	RoleDate        Role = "date"
	RoleUser        Role = "user"
	RoleDomain      Role = "domain"
	RoleReason      Role = "reason"
	RoleSMTP        Role = "smtp"
	RoleServer      Role = "server"
	RoleDetails     Role = "details"
	RoleRecipients  Role = "recipients"
	RoleDelivered   Role = "delivered"
	RoleSuccessRate Role = "success_rate"
)

var (
	// ErrNoColumns is returned when a mapping is resolved against an empty schema
	ErrNoColumns = errors.New("table has no columns")

	// ErrUnknownRole is returned when an override names a role the sheet kind does not use
	ErrUnknownRole = errors.New("unknown role")
)

// Defaults maps each role to its preferred column name.
type Defaults map[Role]string

// DefaultRoles returns the built-in role defaults for a sheet kind. Kinds
// without presets have no roles.
func DefaultRoles(kind SheetKind) Defaults {
	switch kind {
	case FailureDetails:
		return Defaults{
			RoleDate:    "Date Sent",
			RoleUser:    "User",
			RoleDomain:  "To Domain",
			RoleReason:  "Detail Category",
			RoleSMTP:    "SMTP Code",
			RoleServer:  "Server",
			RoleDetails: "Details",
		}
	case LowDeliverability:
		return Defaults{
			RoleDomain:      "Domain",
			RoleRecipients:  "Recipients",
			RoleDelivered:   "Delivered",
			RoleSuccessRate: "Success Rate %",
		}
	default:
		return Defaults{}
	}
}

// Roles returns the roles in name order.
func (d Defaults) Roles() []Role {
	roles := make([]Role, 0, len(d))
	for r := range d {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// Merge returns d with the non-empty entries of other applied on top.
func (d Defaults) Merge(other Defaults) Defaults {
	out := make(Defaults, len(d)+len(other))
	for r, c := range d {
		out[r] = c
	}
	for r, c := range other {
		if c != "" {
			out[r] = c
		}
	}
	return out
}

// Binding is the column a role resolved to.
type Binding struct {
	Role      Role
	Column    string
	Preferred string // the name that was looked for
	Fallback  bool   // Preferred was absent and the first column was used
}

// Mapping resolves roles to live column names.
type Mapping struct {
	bindings map[Role]Binding
}

// Resolve binds every role in defaults to a column of the schema.
//
// Overrides are the user's explicit choices and must name existing columns.
// For the remaining roles the default name is used when the schema has it;
// otherwise the role falls back to the first column, so resolution only
// fails for a schema without columns.
func Resolve(columns []string, defaults Defaults, overrides map[Role]string) (Mapping, error) {
	if len(columns) == 0 {
		return Mapping{}, ErrNoColumns
	}

	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	for role, col := range overrides {
		if _, ok := defaults[role]; !ok {
			return Mapping{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
		}
		if !present[col] {
			return Mapping{}, fmt.Errorf("role %s: column %q not in sheet", role, col)
		}
	}

	m := Mapping{bindings: make(map[Role]Binding, len(defaults))}
	for role, preferred := range defaults {
		b := Binding{Role: role, Preferred: preferred}
		switch {
		case overrides[role] != "":
			b.Column = overrides[role]
			b.Preferred = overrides[role]
		case present[preferred]:
			b.Column = preferred
		default:
			b.Column = columns[0]
			b.Fallback = true
		}
		m.bindings[role] = b
	}
	return m, nil
}

// Column returns the column bound to role.
func (m Mapping) Column(role Role) (string, bool) {
	b, ok := m.bindings[role]
	return b.Column, ok
}

// Binding returns the full binding for role.
func (m Mapping) Binding(role Role) (Binding, bool) {
	b, ok := m.bindings[role]
	return b, ok
}

// Bindings returns every binding in role name order.
func (m Mapping) Bindings() []Binding {
	out := make([]Binding, 0, len(m.bindings))
	for _, b := range m.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out
}

// Fallbacks returns the bindings that used the first-column fallback.
func (m Mapping) Fallbacks() []Binding {
	var out []Binding
	for _, b := range m.Bindings() {
		if b.Fallback {
			out = append(out, b)
		}
	}
	return out
}
