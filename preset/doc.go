// Package preset holds the canned queries offered for known sheet shapes.
//
// A workbook sheet is classified by name into a SheetKind. Each kind has a
// set of semantic roles (domain, reason, SMTP code, ...) with a preferred
// column name, and a list of presets written against those roles.
//
// Resolve binds roles to the columns of the loaded sheet. A role whose
// preferred column is missing binds to the first column instead, so every
// preset can always be planned; such bindings are marked Fallback and the
// query may then fail, or mislead, when executed.
//
//	kind := preset.KindOf("Failure Details")
//	m, err := preset.Resolve(table.ColumnNames(), preset.DefaultRoles(kind), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := preset.Lookup(kind, "Top 10 failing domains")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plan, err := p.Plan(m)
package preset
