package export

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"ad-revenue-lab/internal/domain"
)

// parquetParallelism is the number of goroutines used by the writer.
const parquetParallelism = 4

// WriteParquet writes txs as a ZSTD-compressed parquet stream.
func WriteParquet(w io.Writer, txs []*domain.Transaction) error {
	pw, err := writer.NewParquetWriterFromWriter(w, new(Row), parquetParallelism)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	return writeRows(pw, txs)
}

// WriteParquetFile writes txs to a parquet file at path.
func WriteParquetFile(path string, txs []*domain.Transaction) error {
	fh, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file %s: %w", path, err)
	}
	defer closeQuietly(fh)

	pw, err := writer.NewParquetWriter(fh, new(Row), parquetParallelism)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	return writeRows(pw, txs)
}

func writeRows(pw *writer.ParquetWriter, txs []*domain.Transaction) error {
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, r := range Rows(txs) {
		if err := pw.Write(r); err != nil {
			return fmt.Errorf("write parquet row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet: %w", err)
	}
	return nil
}

func closeQuietly(f source.ParquetFile) {
	_ = f.Close()
}
