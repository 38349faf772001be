package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/youssefsiam38/artifactpg/download"
)

// ExportCSV exports the filtered and sorted rows, ignoring pagination. The
// first line holds the column keys; every value after it is serialized as a
// JSON literal, with absent values written as "".
func (v *View) ExportCSV() download.File {
	var b strings.Builder
	keys := ColumnKeys(v.columns)
	b.WriteString(strings.Join(keys, ","))

	for _, r := range v.Rows() {
		b.WriteByte('\n')
		for i, key := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(csvCell(r.Value(key)))
		}
	}

	return download.File{
		Name:        download.Filename(v.title, "csv"),
		ContentType: download.ContentTypeCSV,
		Data:        []byte(b.String()),
	}
}

func csvCell(v any) string {
	if v == nil {
		return `""`
	}
	data, err := marshalValue(v)
	if err != nil {
		return strconv.Quote(Stringify(v))
	}
	return string(data)
}

// ExportJSON exports the filtered and sorted rows as an indented JSON array.
func (v *View) ExportJSON() (download.File, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v.Rows()); err != nil {
		return download.File{}, fmt.Errorf("failed to marshal rows: %w", err)
	}
	return download.File{
		Name:        download.Filename(v.title, "json"),
		ContentType: download.ContentTypeJSON,
		Data:        bytes.TrimRight(buf.Bytes(), "\n"),
	}, nil
}

// parquetRecord is one exported row. Rows have no fixed schema, so each row
// is stored as its JSON text next to its position in the export.
type parquetRecord struct {
	RowIndex int64  `parquet:"name=row_index, type=INT64"`
	DataJSON string `parquet:"name=data_json, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ExportParquet exports the filtered and sorted rows as a Snappy-compressed
// Parquet file.
func (v *View) ExportParquet() (download.File, error) {
	dir, err := os.MkdirTemp("", "artifactpg-parquet-*")
	if err != nil {
		return download.File{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "export.parquet")
	if err := writeParquet(path, v.Rows()); err != nil {
		return download.File{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return download.File{}, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return download.File{
		Name:        download.Filename(v.title, "parquet"),
		ContentType: download.ContentTypeParquet,
		Data:        data,
	}, nil
}

func writeParquet(path string, rows []Row) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(parquetRecord), 4)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, r := range rows {
		data, err := r.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal row %d: %w", i, err)
		}
		if err := pw.Write(parquetRecord{RowIndex: int64(i), DataJSON: string(data)}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}
