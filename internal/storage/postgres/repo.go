package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"autodash/internal/storage"
)

// Repo implements storage.Repository for PostgreSQL via pgx's database/sql
// driver.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("pgx", cfg.DSN)
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

// insertBatchRows caps multi-row INSERT statements. Postgres allows 65535
// bind parameters per statement; 500 rows stays clear of it for any table
// the inference produces.
const insertBatchRows = 500

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
			return 0, fmt.Errorf("postgres: row %d has %d cells, want %d", i, len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			args = append(args, storage.NormalizeValue(v))
			fmt.Fprintf(&b, "$%d", len(args))
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
	_, err := r.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+sqlIdent(table))
	if err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	return nil
}

func buildCreateSQL(def storage.SchemaDefinition) (string, error) {
	if def.Table == "" {
		return "", fmt.Errorf("postgres: empty table name")
	}
	if len(def.Columns) == 0 {
		return "", fmt.Errorf("postgres: table %s has no columns", def.Table)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", sqlIdent(def.Table))
	for i, c := range def.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  %s %s", sqlIdent(c.Name), sqlType(c))
	}
	b.WriteString("\n)")
	return b.String(), nil
}

// sqlType maps the generic vocabulary to Postgres DDL. Postgres has no
// TINYINT; the tiny tier widens to SMALLINT.
func sqlType(c storage.ColumnDef) string {
	switch c.Type {
	case storage.TypeTinyInt, storage.TypeSmallInt:
		return "SMALLINT"
	case storage.TypeInteger:
		return "INTEGER"
	case storage.TypeBigInt:
		return "BIGINT"
	case storage.TypeDecimal:
		return "NUMERIC(10,2)"
	case storage.TypeBoolean:
		return "BOOLEAN"
	case storage.TypeDate:
		return "DATE"
	case storage.TypeVarchar:
		return fmt.Sprintf("VARCHAR(%d)", c.Length)
	default:
		return "TEXT"
	}
}

func sqlIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
