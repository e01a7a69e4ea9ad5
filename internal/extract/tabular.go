package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kotae/internal/chunker"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Rows whose formatted text exceeds oversizeRowChars additionally get
// sub-chunks at rowSubChunkSize so a single huge row stays retrievable.
const (
	oversizeRowChars   = 500
	rowSubChunkSize    = 200
	rowSubChunkOverlap = 100
)

// extractCSV decodes CSV content with the ordered encoding fallback and turns
// it into chunks: one header listing, one chunk per row (capped), and a
// closing summary when rows were omitted. Malformed rows are skipped.
func (e *Extractor) extractCSV(content []byte) []string {
	text, encName, err := DecodeText(content)
	if err != nil {
		e.logger.Warn("csv decode failed", zap.Error(err))
		return nil
	}
	records := readCSVRecords(text)
	if len(records) == 0 {
		return nil
	}
	e.logger.Info("parsed csv", zap.String("encoding", encName), zap.Int("records", len(records)))
	return e.tabularChunks(records)
}

// extractXLSX reads the first sheet of a workbook and feeds its rows through
// the same formatting as CSV.
func (e *Extractor) extractXLSX(content []byte) []string {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		e.logger.Warn("xlsx open failed", zap.Error(err))
		return nil
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		e.logger.Warn("xlsx read failed", zap.String("sheet", sheets[0]), zap.Error(err))
		return nil
	}
	return e.tabularChunks(rows)
}

// readCSVRecords parses text as CSV, skipping malformed rows.
func readCSVRecords(text string) [][]string {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// tabularChunks formats header and data rows into retrievable text chunks.
// The first record is the header row. At most maxRows data rows are emitted;
// a summary chunk reports the omitted count. Empty cells are left out of the
// "col: val" pairs.
func (e *Extractor) tabularChunks(records [][]string) []string {
	if len(records) == 0 {
		return nil
	}
	headers := records[0]
	rows := records[1:]

	chunks := []string{"CSV Headers: " + strings.Join(headers, ", ")}
	sub := chunker.New(rowSubChunkSize, rowSubChunkOverlap)

	for n, row := range rows {
		if n >= e.maxRows {
			break
		}
		var pairs []string
		for i, val := range row {
			if i >= len(headers) {
				break
			}
			if strings.TrimSpace(val) == "" {
				continue
			}
			pairs = append(pairs, fmt.Sprintf("%s: %s", headers[i], val))
		}
		rowText := strings.Join(pairs, ", ")
		chunks = append(chunks, fmt.Sprintf("Row %d: %s", n+1, rowText))
		if len(rowText) > oversizeRowChars {
			chunks = append(chunks, sub.Chunk(rowText)...)
		}
	}
	if len(rows) > e.maxRows {
		chunks = append(chunks, fmt.Sprintf("... and %d more rows", len(rows)-e.maxRows))
	}
	return chunks
}
