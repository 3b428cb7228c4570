package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"autodash/internal/storage"
)

// Repo implements storage.Repository for SQL Server.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) CreateTable(ctx context.Context, def storage.SchemaDefinition) error {
	ddl, err := buildCreateSQL(def)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", def.Table, err)
	}
	return nil
}

// insertBatchRows caps multi-row INSERT statements. SQL Server limits a
// statement to 2100 parameters; 50 rows keeps wide tables under it.
const insertBatchRows = 50

func (r *Repo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var total int64
	for start := 0; start < len(rows); start += insertBatchRows {
		end := start + insertBatchRows
		if end > len(rows) {
			end = len(rows)
		}
		n, err := r.insertBatch(ctx, table, columns, rows[start:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *Repo) insertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("mssql: row %d has %d cells, want %d", i, len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			args = append(args, sql.Named(fmt.Sprintf("p%d", len(args)+1), storage.NormalizeValue(v)))
			fmt.Fprintf(&b, "@p%d", len(args))
		}
		b.WriteString(")")
	}

	res, err := r.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) DropTable(ctx context.Context, table string) error {
	stmt := fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s",
		strings.ReplaceAll(table, "'", "''"), sqlIdent(table))
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	return nil
}

func buildCreateSQL(def storage.SchemaDefinition) (string, error) {
	if def.Table == "" {
		return "", fmt.Errorf("mssql: empty table name")
	}
	if len(def.Columns) == 0 {
		return "", fmt.Errorf("mssql: table %s has no columns", def.Table)
	}

	var b strings.Builder
	// SQL Server has no IF NOT EXISTS on CREATE TABLE; the OBJECT_ID
	// guard keeps creation idempotent like the other backends.
	fmt.Fprintf(&b, "IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\nCREATE TABLE %s (\n",
		strings.ReplaceAll(def.Table, "'", "''"), sqlIdent(def.Table))
	for i, c := range def.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  %s %s", sqlIdent(c.Name), sqlType(c))
	}
	b.WriteString("\n)\nEND")
	return b.String(), nil
}

func sqlType(c storage.ColumnDef) string {
	switch c.Type {
	case storage.TypeTinyInt:
		return "TINYINT"
	case storage.TypeSmallInt:
		return "SMALLINT"
	case storage.TypeInteger:
		return "INT"
	case storage.TypeBigInt:
		return "BIGINT"
	case storage.TypeDecimal:
		return "DECIMAL(10,2)"
	case storage.TypeBoolean:
		return "BIT"
	case storage.TypeDate:
		return "DATE"
	case storage.TypeVarchar:
		return fmt.Sprintf("NVARCHAR(%d)", c.Length)
	default:
		return "NVARCHAR(MAX)"
	}
}

func sqlIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
