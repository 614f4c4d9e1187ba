package preset

import (
	"errors"
	"fmt"

	"github.com/vegasq/sheetql/query"
)

// ErrUnknownPreset is returned when no preset of the sheet kind has the name
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a fixed query shape over semantic roles.
type Preset struct {
	Name  string
	Kind  SheetKind
	Roles []Role
	Limit int
	build func(cols map[Role]string, limit int) query.Plan
}

// Plan binds the preset's roles through m and returns its query plan.
func (p Preset) Plan(m Mapping) (query.Plan, error) {
	cols := make(map[Role]string, len(p.Roles))
	for _, r := range p.Roles {
		c, ok := m.Column(r)
		if !ok {
			return query.Plan{}, fmt.Errorf("preset %q: role %s is not mapped", p.Name, r)
		}
		cols[r] = c
	}
	return p.build(cols, p.Limit), nil
}

// Bindings returns the mapping entries this preset uses.
func (p Preset) Bindings(m Mapping) []Binding {
	out := make([]Binding, 0, len(p.Roles))
	for _, r := range p.Roles {
		if b, ok := m.Binding(r); ok {
			out = append(out, b)
		}
	}
	return out
}

// topCounts groups by one role and counts rows, largest first.
func topCounts(name string, role Role, alias, countAlias string, limit int) Preset {
	return Preset{
		Name:  name,
		Kind:  FailureDetails,
		Roles: []Role{role},
		Limit: limit,
		build: func(cols map[Role]string, limit int) query.Plan {
			col := cols[role]
			return query.Plan{
				Projection: query.SelectColumns,
				Select: []query.SelectItem{
					{Expr: query.Col(col), Alias: alias},
					{Expr: query.CountAll(), Alias: countAlias},
				},
				GroupBy: []query.Expr{query.Col(col)},
				OrderBy: []query.OrderKey{{Expr: query.Alias(countAlias), Desc: true}},
				Limit:   limit,
			}
		},
	}
}

var failuresByDay = Preset{
	Name:  "Failures by day",
	Kind:  FailureDetails,
	Roles: []Role{RoleDate},
	Limit: 30,
	build: func(cols map[Role]string, limit int) query.Plan {
		day := query.DateOf(cols[RoleDate])
		return query.Plan{
			Projection: query.SelectColumns,
			Select: []query.SelectItem{
				{Expr: day, Alias: "sent_day"},
				{Expr: query.CountAll(), Alias: "failures"},
			},
			GroupBy: []query.Expr{day},
			OrderBy: []query.OrderKey{{Expr: query.Alias("sent_day"), Desc: true}},
			Limit:   limit,
		}
	},
}

// deliverability lists domain delivery figures sorted by one role.
func deliverability(name string, sortBy Role, desc bool) Preset {
	return Preset{
		Name:  name,
		Kind:  LowDeliverability,
		Roles: []Role{RoleDomain, RoleRecipients, RoleDelivered, RoleSuccessRate},
		Limit: 25,
		build: func(cols map[Role]string, limit int) query.Plan {
			return query.Plan{
				Projection: query.SelectColumns,
				Select: []query.SelectItem{
					{Expr: query.Col(cols[RoleDomain])},
					{Expr: query.Col(cols[RoleRecipients])},
					{Expr: query.Col(cols[RoleDelivered])},
					{Expr: query.Col(cols[RoleSuccessRate]), Alias: "success_rate"},
				},
				OrderBy: []query.OrderKey{{Expr: query.Col(cols[sortBy]), Desc: desc}},
				Limit:   limit,
			}
		},
	}
}

var catalog = map[SheetKind][]Preset{
	FailureDetails: {
		topCounts("Top 10 failing domains", RoleDomain, "to_domain", "failures", 10),
		topCounts("Top failure reasons", RoleReason, "reason", "cnt", 15),
		topCounts("Top SMTP codes", RoleSMTP, "smtp_code", "cnt", 20),
		topCounts("Top users by failures", RoleUser, "user", "failures", 20),
		topCounts("Failures by server", RoleServer, "server", "failures", 20),
		failuresByDay,
	},
	LowDeliverability: {
		deliverability("Lowest success-rate domains", RoleSuccessRate, false),
		deliverability("Highest recipients among low deliverability", RoleRecipients, true),
	},
}

// ForKind returns the presets offered for a sheet kind, in display order.
func ForKind(kind SheetKind) []Preset {
	presets := catalog[kind]
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// Lookup finds a preset of kind by name.
func Lookup(kind SheetKind, name string) (Preset, error) {
	for _, p := range catalog[kind] {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q for %s sheets", ErrUnknownPreset, name, kind)
}
