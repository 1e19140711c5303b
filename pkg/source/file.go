package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ruslano69/launchdash/pkg/launch"
	"github.com/ruslano69/launchdash/pkg/processors"
	"github.com/ruslano69/launchdash/pkg/retry"
	"github.com/ruslano69/launchdash/pkg/xlsx"
)

// loadFile читает файл (локальный или из S3), сверяет контрольную сумму,
// распаковывает по расширению и разбирает как CSV или XLSX.
// Третье значение - xxh3 сырых байт файла до распаковки.
func loadFile(ctx context.Context, cfg Config, typ, path string) ([]string, [][]string, string, error) {
	var (
		data []byte
		err  error
	)
	if isS3URI(path) {
		data, err = fetchS3(ctx, cfg.S3, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, nil, "", err
	}

	sum := processors.ComputeChecksum(data)
	if cfg.Checksum != "" {
		if err := processors.ValidateChecksum(data, strings.ToLower(cfg.Checksum)); err != nil {
			// Тот же файл не исправится от повтора
			return nil, nil, sum, retry.Permanent(fmt.Errorf("%w: %v", ErrChecksumMismatch, err))
		}
	}

	data, err = processors.Decompress(path, data)
	if err != nil {
		return nil, nil, sum, err
	}

	var (
		header []string
		rows   [][]string
	)
	if typ == TypeXLSX {
		header, rows, err = xlsx.ReadSheet(bytes.NewReader(data), cfg.Sheet)
	} else {
		header, rows, err = ReadCSV(bytes.NewReader(data))
	}
	return header, rows, sum, err
}

// ReadCSV parses a CSV stream whose first record is the header.
// A leading UTF-8 BOM is dropped from the first header cell.
func ReadCSV(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, ErrNoRows
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = string(bytes.TrimPrefix([]byte(header[0]), []byte("\xef\xbb\xbf")))
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return header, rows, nil
}

// WriteCSV writes records with the raw column names of cols, so that the
// output can be loaded back with the same mapping.
func WriteCSV(w io.Writer, cols Columns, records []launch.Record) error {
	cw := csv.NewWriter(w)
	header := cols.Header()
	if err := cw.Write(header[:]); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Site,
			r.Class.String(),
			strconv.FormatFloat(r.PayloadMass, 'f', -1, 64),
			r.BoosterVersion,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
