package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/xpttools/xpt/pkg/types"
)

// Field metadata keys carried on every column.
const (
	MetaLabel    = "sas.label"
	MetaFormat   = "sas.format"
	MetaInformat = "sas.informat"
	MetaLength   = "sas.length"
)

// Schema maps the variables of ds to Arrow fields: nullable float64 for
// numerics, utf8 for character variables.
func Schema(ds *types.Dataset) *arrow.Schema {
	fields := make([]arrow.Field, len(ds.Variables))
	for i, v := range ds.Variables {
		var dt arrow.DataType = arrow.BinaryTypes.String
		if v.IsNumeric() {
			dt = arrow.PrimitiveTypes.Float64
		}
		md := arrow.NewMetadata(
			[]string{MetaLabel, MetaFormat, MetaInformat, MetaLength},
			[]string{v.Label, v.Format.String(), v.Informat.String(), strconv.Itoa(v.Length)},
		)
		fields[i] = arrow.Field{Name: v.Name, Type: dt, Nullable: true, Metadata: md}
	}
	md := arrow.NewMetadata([]string{"sas.dataset", "sas.label"}, []string{ds.Name, ds.Label})
	return arrow.NewSchema(fields, &md)
}

// Record builds one Arrow record holding every row of ds. The caller
// releases it.
func Record(mem memory.Allocator, ds *types.Dataset) arrow.Record {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	rb := array.NewRecordBuilder(mem, Schema(ds))
	defer rb.Release()

	for col, v := range ds.Variables {
		if v.IsNumeric() {
			b := rb.Field(col).(*array.Float64Builder)
			b.Reserve(len(ds.Rows))
			for _, row := range ds.Rows {
				if f, ok := row[col].Float(); ok {
					b.Append(f)
				} else {
					b.AppendNull()
				}
			}
			continue
		}
		b := rb.Field(col).(*array.StringBuilder)
		b.Reserve(len(ds.Rows))
		for _, row := range ds.Rows {
			b.Append(row[col].Str)
		}
	}
	return rb.NewRecord()
}

// WriteParquet writes ds as a Snappy-compressed Parquet file with the Arrow
// schema stored alongside.
func WriteParquet(w io.Writer, ds *types.Dataset) error {
	mem := memory.NewGoAllocator()
	rec := Record(mem, ds)
	defer rec.Release()

	table := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
	defer table.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(table.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating parquet writer: %w", err)
	}
	if err := writer.WriteTable(table, max(table.NumRows(), 1)); err != nil {
		writer.Close()
		return fmt.Errorf("writing table to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}
