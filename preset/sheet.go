package preset

import "fmt"

// SheetKind identifies one of the known workbook sheet shapes.
type SheetKind int

const (
	Generic SheetKind = iota
	FailureDetails
	LowDeliverability
	FailureReasons
)

var sheetNames = map[SheetKind]string{
	FailureDetails:    "Failure Details",
	LowDeliverability: "Domains w Lower Deliverability",
	FailureReasons:    "Failure Reasons",
}

// KindOf maps a sheet name to its kind. Unknown names are Generic.
func KindOf(sheet string) SheetKind {
	for kind, name := range sheetNames {
		if name == sheet {
			return kind
		}
	}
	return Generic
}

// SheetName returns the sheet name a kind is recognised by, or "" for Generic.
func (k SheetKind) SheetName() string {
	return sheetNames[k]
}

// String returns a short identifier used in configuration files.
func (k SheetKind) String() string {
	switch k {
	case Generic:
		return "generic"
	case FailureDetails:
		return "failure_details"
	case LowDeliverability:
		return "low_deliverability"
	case FailureReasons:
		return "failure_reasons"
	default:
		return fmt.Sprintf("SheetKind(%d)", int(k))
	}
}

// ParseKind converts a configuration identifier back to a kind.
func ParseKind(s string) (SheetKind, error) {
	for _, k := range []SheetKind{Generic, FailureDetails, LowDeliverability, FailureReasons} {
		if k.String() == s {
			return k, nil
		}
	}
	return Generic, fmt.Errorf("unknown sheet kind %q", s)
}

// Note returns guidance shown when a sheet of this kind is selected.
func (k SheetKind) Note() string {
	if k == FailureReasons {
		return "This sheet looks like a pivot table export (Row Labels + Count). Use custom filters or just view it."
	}
	return ""
}
