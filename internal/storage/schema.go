// SchemaDefinition lives here, rather than in the schema package, so that
// backend packages can import it without a circular dependency.
package storage

// ColumnType is the backend-neutral type vocabulary produced by inference.
// Each backend maps these to its own DDL keywords.
type ColumnType string

const (
	TypeTinyInt  ColumnType = "tinyint"
	TypeSmallInt ColumnType = "smallint"
	TypeInteger  ColumnType = "integer"
	TypeBigInt   ColumnType = "bigint"
	TypeDecimal  ColumnType = "decimal" // fixed at precision 10, scale 2
	TypeBoolean  ColumnType = "boolean"
	TypeDate     ColumnType = "date"
	TypeVarchar  ColumnType = "varchar" // Length carries the width
	TypeText     ColumnType = "text"
)

// SchemaDefinition describes one dataset table ready for DDL generation.
type SchemaDefinition struct {
	Table   string      `json:"table"`
	Columns []ColumnDef `json:"columns"`
}

type ColumnDef struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
	// Length is the declared width for TypeVarchar; ignored otherwise.
	Length int `json:"length,omitempty"`
}

// ColumnNames returns the column names in declaration order.
func (d SchemaDefinition) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}
