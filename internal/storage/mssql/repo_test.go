package mssql

import (
	"strings"
	"testing"

	"autodash/internal/storage"
)

func TestBuildCreateSQLTypes(t *testing.T) {
	t.Parallel()

	def := storage.SchemaDefinition{
		Table: "dataset_patients",
		Columns: []storage.ColumnDef{
			{Name: "age", Type: storage.TypeTinyInt},
			{Name: "visits", Type: storage.TypeSmallInt},
			{Name: "balance", Type: storage.TypeDecimal},
			{Name: "admitted", Type: storage.TypeBoolean},
			{Name: "name", Type: storage.TypeVarchar, Length: 80},
			{Name: "history", Type: storage.TypeText},
		},
	}
	ddl, err := buildCreateSQL(def)
	if err != nil {
		t.Fatalf("buildCreateSQL: %v", err)
	}
	for _, want := range []string{
		"IF OBJECT_ID(N'dataset_patients', N'U') IS NULL",
		"CREATE TABLE [dataset_patients]",
		"[age] TINYINT",
		"[visits] SMALLINT",
		"[balance] DECIMAL(10,2)",
		"[admitted] BIT",
		"[name] NVARCHAR(80)",
		"[history] NVARCHAR(MAX)",
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("DDL missing %q:\n%s", want, ddl)
		}
	}
}
