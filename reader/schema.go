package reader

// SchemaInfo describes one column of a loaded table.
type SchemaInfo struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	NonNull  int         `json:"non_null"`
	Distinct int         `json:"distinct"`
	Sample   interface{} `json:"sample,omitempty"`
}

// ExtractSchemaInfo summarises each column of the table: its inferred type,
// how many values are present, how many distinct values there are and the
// first present value.
func ExtractSchemaInfo(t *Table) []SchemaInfo {
	infos := make([]SchemaInfo, len(t.Columns))
	for c, col := range t.Columns {
		info := SchemaInfo{Name: col.Name, Type: col.Type.String()}
		seen := make(map[interface{}]bool)
		for _, row := range t.Rows {
			v := row[c]
			if v == nil {
				continue
			}
			if info.NonNull == 0 {
				info.Sample = v
			}
			info.NonNull++
			seen[v] = true
		}
		info.Distinct = len(seen)
		infos[c] = info
	}
	return infos
}
