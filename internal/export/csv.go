// Package export renders stored analysis records into portable formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spacesedan/echomind/internal/models"
)

var csvHeader = []string{
	"id",
	"timestamp",
	"source_text",
	"response_text",
	"modality",
	"sentiment_compound",
	"content_length",
}

// WriteRecords emits the full export: one header row followed by one row
// per record, in the order the records were handed in. Timestamps use
// RFC 3339 with nanoseconds so a re-import reproduces the stored instant
// exactly.
func WriteRecords(w io.Writer, records []models.AnalysisRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.FormatInt(record.ID, 10),
			record.CreatedAt.UTC().Format(time.RFC3339Nano),
			record.SourceText,
			record.ResponseText,
			string(record.Modality),
			strconv.FormatFloat(record.Sentiment.Compound, 'f', -1, 64),
			strconv.Itoa(record.ContentLength),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", record.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ParseRecords reads an export back into records. Only the exported
// columns are recovered; per-score sentiment components and emotion
// distributions are not part of the CSV format.
func ParseRecords(r io.Reader) ([]models.AnalysisRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, name := range csvHeader {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected csv column %q, want %q", header[i], name)
		}
	}

	var records []models.AnalysisRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id on line %d: %w", line, err)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, row[1])
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp on line %d: %w", line, err)
		}
		compound, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sentiment on line %d: %w", line, err)
		}
		length, err := strconv.Atoi(row[6])
		if err != nil {
			return nil, fmt.Errorf("invalid content length on line %d: %w", line, err)
		}

		records = append(records, models.AnalysisRecord{
			ID:            id,
			CreatedAt:     createdAt,
			SourceText:    row[2],
			ResponseText:  row[3],
			Modality:      models.Modality(row[4]),
			Sentiment:     models.SentimentScore{Compound: compound},
			ContentLength: length,
		})
	}
	return records, nil
}
