// Package source загружает таблицу запусков из файла (CSV, XLSX, в том числе
// сжатых и лежащих в S3) или из SQL базы, и приводит колонки к внутренним именам.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ruslano69/launchdash/pkg/launch"
	"github.com/ruslano69/launchdash/pkg/processors"
	"github.com/ruslano69/launchdash/pkg/retry"
)

// Типы источников
const (
	TypeCSV      = "csv"
	TypeXLSX     = "xlsx"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
	TypeMSSQL    = "mssql"
)

// DefaultPath - файл, который читает дашборд без конфигурации
const DefaultPath = "spacex_launch_dash.csv"

var (
	// ErrNoRows - источник не содержит ни одной строки данных
	ErrNoRows = errors.New("source has no data rows")
	// ErrMissingColumn - в заголовке нет обязательной колонки
	ErrMissingColumn = errors.New("required column not found")
	// ErrChecksumMismatch - файл не совпал с ожидаемой source.checksum
	ErrChecksumMismatch = errors.New("source checksum mismatch")
)

// Config - описание источника данных
type Config struct {
	Type     string       `yaml:"type"`     // csv / xlsx / sqlite / postgres / mysql / mssql; пусто = по расширению path
	Path     string       `yaml:"path"`     // файл или s3://bucket/key (csv, xlsx)
	DSN      string       `yaml:"dsn"`      // строка подключения (SQL типы)
	Query    string       `yaml:"query"`    // SELECT для SQL типов
	Sheet    string       `yaml:"sheet"`    // лист XLSX, пусто = первый
	Checksum string       `yaml:"checksum"` // ожидаемый xxh3 (hex) файла до распаковки, пусто = не проверять
	Columns  Columns      `yaml:"columns"`
	S3       S3Config     `yaml:"s3"`
	Retry    retry.Config `yaml:"retry"` // повтор чтения при недоступной БД или S3
}

// Columns - соответствие исходных имен колонок внутренним полям
type Columns struct {
	Site           string `yaml:"site"`
	Class          string `yaml:"class"`
	PayloadMass    string `yaml:"payload_mass"`
	BoosterVersion string `yaml:"booster_version_category"`
}

// DefaultColumns returns the column names of the SpaceX launch dataset.
func DefaultColumns() Columns {
	return Columns{
		Site:           "Launch Site",
		Class:          "class",
		PayloadMass:    "Payload Mass (kg)",
		BoosterVersion: "Booster Version Category",
	}
}

// withDefaults fills empty mapping entries from DefaultColumns.
func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.Site == "" {
		c.Site = d.Site
	}
	if c.Class == "" {
		c.Class = d.Class
	}
	if c.PayloadMass == "" {
		c.PayloadMass = d.PayloadMass
	}
	if c.BoosterVersion == "" {
		c.BoosterVersion = d.BoosterVersion
	}
	return c
}

// Header returns the raw column names in record field order.
func (c Columns) Header() [4]string {
	c = c.withDefaults()
	return [4]string{c.Site, c.Class, c.PayloadMass, c.BoosterVersion}
}

// Result - загруженная таблица и сведения об источнике
type Result struct {
	Table       *launch.Table
	Source      string // путь или тип SQL источника, без пароля
	Type        string
	Rows        int
	Checksum    string // xxh3 отпечаток декодированных строк
	RawChecksum string // xxh3 сырых байт файла, пусто для SQL
	Duration    time.Duration
}

// ResolveType returns cfg.Type, or infers it from the path extension.
func (cfg Config) ResolveType() (string, error) {
	if cfg.Type != "" {
		t := strings.ToLower(cfg.Type)
		switch t {
		case TypeCSV, TypeXLSX, TypeSQLite, TypePostgres, TypeMySQL, TypeMSSQL:
			return t, nil
		}
		return "", fmt.Errorf("unknown source type %q (csv/xlsx/sqlite/postgres/mysql/mssql)", cfg.Type)
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	_, plain := processors.DetectCodec(path)
	switch strings.ToLower(filepath.Ext(plain)) {
	case ".csv", ".txt":
		return TypeCSV, nil
	case ".xlsx", ".xlsm":
		return TypeXLSX, nil
	case ".db", ".sqlite", ".sqlite3":
		return TypeSQLite, nil
	}
	return "", fmt.Errorf("cannot infer source type from %q, set source.type", cfg.Path)
}

// Validate checks that the fields required by the resolved type are set.
func (cfg Config) Validate() error {
	t, err := cfg.ResolveType()
	if err != nil {
		return err
	}
	switch t {
	case TypeCSV, TypeXLSX:
		return nil
	}
	if cfg.Checksum != "" {
		return fmt.Errorf("source type %q: checksum applies to file sources only", t)
	}
	switch t {
	case TypeSQLite:
		if cfg.DSN == "" && cfg.Path == "" {
			return fmt.Errorf("source type %q: dsn or path is required", t)
		}
	default:
		if cfg.DSN == "" {
			return fmt.Errorf("source type %q: dsn is required", t)
		}
	}
	if cfg.Query == "" {
		return fmt.Errorf("source type %q: query is required", t)
	}
	return nil
}

// Load reads the configured source and builds the launch table.
// Any failure is returned as is; the caller treats it as fatal.
func Load(ctx context.Context, cfg Config) (*Result, error) {
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	typ, _ := cfg.ResolveType()

	retryer, err := retry.NewRetryer(cfg.Retry)
	if err != nil {
		return nil, err
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	desc := typ
	if typ == TypeCSV || typ == TypeXLSX {
		desc = path
	}

	var (
		header []string
		rows   [][]string
		rawSum string
	)
	err = retryer.Do(ctx, func(ctx context.Context) error {
		var ferr error
		if typ == TypeCSV || typ == TypeXLSX {
			header, rows, rawSum, ferr = loadFile(ctx, cfg, typ, path)
		} else {
			header, rows, ferr = loadSQL(ctx, cfg, typ)
		}
		// Отсутствующий локальный файл не появится от повтора
		if errors.Is(ferr, os.ErrNotExist) {
			return retry.Permanent(ferr)
		}
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", typ, desc, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %s: %w", typ, desc, ErrNoRows)
	}

	records, err := Decode(header, rows, cfg.Columns)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", typ, desc, err)
	}
	table, err := launch.NewTable(records)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", typ, desc, err)
	}

	return &Result{
		Table:       table,
		Source:      desc,
		Type:        typ,
		Rows:        table.Len(),
		Checksum:    processors.Fingerprint(header, rows),
		RawChecksum: rawSum,
		Duration:    time.Since(start),
	}, nil
}
