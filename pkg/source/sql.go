package source

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	// Драйверы регистрируются через blank import
	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// driverNames - имя database/sql драйвера для каждого SQL типа источника
var driverNames = map[string]string{
	TypeSQLite:   "sqlite",
	TypePostgres: "pgx",
	TypeMySQL:    "mysql",
	TypeMSSQL:    "sqlserver",
}

// loadSQL выполняет cfg.Query и возвращает результат как строки
func loadSQL(ctx context.Context, cfg Config, typ string) ([]string, [][]string, error) {
	driver, ok := driverNames[typ]
	if !ok {
		return nil, nil, fmt.Errorf("no SQL driver for source type %q", typ)
	}
	dsn := cfg.DSN
	if dsn == "" {
		dsn = cfg.Path
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect: %w", err)
	}

	rows, err := db.QueryContext(ctx, cfg.Query)
	if err != nil {
		return nil, nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// scanRows читает *sql.Rows в [][]string, значения NULL становятся ""
func scanRows(rows *sql.Rows) ([]string, [][]string, error) {
	header, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	values := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range values {
		ptrs[i] = &values[i]
	}

	var out [][]string
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan failed: %w", err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return header, out, nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
