package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/echomind/internal/clients"
	"github.com/spacesedan/echomind/internal/models"
	"github.com/spacesedan/echomind/internal/utils"
)

// Archiver mirrors appended records into a DynamoDB table. It is a
// strictly best-effort secondary sink: the SQLite store remains the
// source of truth and archive failures never reach the user.
type Archiver struct {
	client *dynamodb.Client
	table  string
	buffer *utils.BatchBuffer[models.AnalysisRecord]
}

const archiveBatchSize = 25 // DynamoDB BatchWriteItem ceiling

func NewArchiver(table string) *Archiver {
	return &Archiver{
		client: clients.GetDynamoDBClient(),
		table:  table,
		buffer: utils.NewBatchBuffer[models.AnalysisRecord](),
	}
}

// Add buffers a record; the buffer flushes once a full DynamoDB batch has
// accumulated.
func (a *Archiver) Add(ctx context.Context, record models.AnalysisRecord) {
	a.buffer.Add(record)
	if a.buffer.Size() >= archiveBatchSize {
		a.Flush(ctx)
	}
}

// Flush writes the buffered records, retrying unprocessed items with
// backoff. Leftovers after retries are logged and dropped.
func (a *Archiver) Flush(ctx context.Context) {
	batch := a.buffer.GetAndClear()
	if len(batch) == 0 {
		return
	}

	writeRequests := make([]types.WriteRequest, 0, len(batch))
	for _, record := range batch {
		item, err := recordToItem(record)
		if err != nil {
			slog.Warn("[Archiver] Skipping unarchivable record",
				slog.Int64("record_id", record.ID),
				slog.String("error", err.Error()))
			continue
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}
	if len(writeRequests) == 0 {
		return
	}

	out, err := a.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			a.table: writeRequests,
		},
	})
	if err != nil {
		slog.Error("[Archiver] Failed to batch write records",
			slog.String("error", err.Error()))
		return
	}

	retryCount := 0
	backoff := 500 * time.Millisecond
	for len(out.UnprocessedItems) > 0 && retryCount < 3 {
		time.Sleep(backoff)
		backoff *= 2

		slog.Warn("[Archiver] Retrying unprocessed items...",
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[a.table])))

		out, err = a.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			slog.Error("[Archiver] Error retrying batch write",
				slog.String("error", err.Error()))
			return
		}
		retryCount++
	}

	if len(out.UnprocessedItems) > 0 {
		slog.Error("[Archiver] Some records were not archived even after retries",
			slog.Int("remaining", len(out.UnprocessedItems[a.table])))
		return
	}
	slog.Info("[Archiver] Archived record batch", slog.Int("count", len(writeRequests)))
}

func recordToItem(record models.AnalysisRecord) (map[string]types.AttributeValue, error) {
	item := map[string]types.AttributeValue{
		"record_id":      &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", record.ID)},
		"created_at":     &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", record.CreatedAt.Unix())},
		"source_text":    &types.AttributeValueMemberS{Value: record.SourceText},
		"response_text":  &types.AttributeValueMemberS{Value: record.ResponseText},
		"modality":       &types.AttributeValueMemberS{Value: string(record.Modality)},
		"content_length": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", record.ContentLength)},
	}

	sentiment, err := attributevalue.Marshal(record.Sentiment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sentiment: %w", err)
	}
	item["sentiment"] = sentiment

	if record.HasEmotions() {
		encoded, err := json.Marshal(record.Emotions)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal emotions: %w", err)
		}
		item["emotions"] = &types.AttributeValueMemberS{Value: string(encoded)}
	}

	return item, nil
}
