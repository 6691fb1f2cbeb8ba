package curricula

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"cvquery-backend/internal/shared/telemetry"
)

// dynamoUserIndex is the GSI keyed on user_id with timestamp as the sort
// key, used for newest-first history queries.
const dynamoUserIndex = "user_id-timestamp-index"

// DynamoAPI is the subset of the DynamoDB client the repo needs.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoRepo implements Repo using DynamoDB.
type DynamoRepo struct {
	Client DynamoAPI
	Table  string
}

// Save upserts the record by request ID. Backend failures are logged and
// absorbed.
func (r *DynamoRepo) Save(ctx context.Context, record AnalysisRecord) error {
	item, err := marshalDynamoRecord(record)
	if err != nil {
		return err
	}
	_, err = r.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.Table),
		Item:      item,
	})
	if err != nil {
		telemetry.Error("record.save_failed", map[string]any{
			"backend":    "dynamodb",
			"request_id": record.RequestID,
			"error":      sanitizeError(err),
		})
		return nil
	}
	return nil
}

// GetByRequestID returns a record by its request ID. Backend failures are
// logged and reported as not-found.
func (r *DynamoRepo) GetByRequestID(ctx context.Context, requestID string) (AnalysisRecord, error) {
	out, err := r.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.Table),
		Key: map[string]types.AttributeValue{
			"request_id": &types.AttributeValueMemberS{Value: requestID},
		},
	})
	if err != nil {
		telemetry.Error("record.get_failed", map[string]any{
			"backend":    "dynamodb",
			"request_id": requestID,
			"error":      sanitizeError(err),
		})
		return AnalysisRecord{}, ErrNotFound
	}
	if len(out.Item) == 0 {
		return AnalysisRecord{}, ErrNotFound
	}
	return unmarshalDynamoRecord(out.Item)
}

// ListByUser queries the user index newest-first. Backend failures are
// logged and degrade to an empty history.
func (r *DynamoRepo) ListByUser(ctx context.Context, userID string, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	out, err := r.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.Table),
		IndexName:              aws.String(dynamoUserIndex),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		telemetry.Error("record.list_failed", map[string]any{
			"backend": "dynamodb",
			"user_id": userID,
			"error":   sanitizeError(err),
		})
		return []AnalysisRecord{}, nil
	}

	records := make([]AnalysisRecord, 0, len(out.Items))
	for _, item := range out.Items {
		record, err := unmarshalDynamoRecord(item)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func marshalDynamoRecord(record AnalysisRecord) (map[string]types.AttributeValue, error) {
	resultBlob, err := json.Marshal(record.Result)
	if err != nil {
		return nil, err
	}

	names := make([]types.AttributeValue, 0, len(record.FileNames))
	for _, name := range record.FileNames {
		names = append(names, &types.AttributeValueMemberS{Value: name})
	}

	item := map[string]types.AttributeValue{
		"request_id":      &types.AttributeValueMemberS{Value: record.RequestID},
		"user_id":         &types.AttributeValueMemberS{Value: record.UserID},
		"timestamp":       &types.AttributeValueMemberN{Value: formatUnixSeconds(record.Timestamp)},
		"files_count":     &types.AttributeValueMemberN{Value: strconv.Itoa(record.FilesCount)},
		"file_names":      &types.AttributeValueMemberL{Value: names},
		"result":          &types.AttributeValueMemberS{Value: string(resultBlob)},
		"processing_time": &types.AttributeValueMemberN{Value: strconv.FormatFloat(record.ProcessingTime, 'f', -1, 64)},
		"status":          &types.AttributeValueMemberS{Value: record.Status},
	}
	if record.Query != "" {
		item["query"] = &types.AttributeValueMemberS{Value: record.Query}
	}
	return item, nil
}

func unmarshalDynamoRecord(item map[string]types.AttributeValue) (AnalysisRecord, error) {
	var record AnalysisRecord
	var err error

	if record.RequestID, err = dynamoString(item, "request_id"); err != nil {
		return AnalysisRecord{}, err
	}
	if record.UserID, err = dynamoString(item, "user_id"); err != nil {
		return AnalysisRecord{}, err
	}
	if record.Status, err = dynamoString(item, "status"); err != nil {
		return AnalysisRecord{}, err
	}
	record.Query, _ = dynamoString(item, "query")

	ts, err := dynamoNumber(item, "timestamp")
	if err != nil {
		return AnalysisRecord{}, err
	}
	record.Timestamp = timeFromUnixSeconds(ts)

	filesCount, err := dynamoNumber(item, "files_count")
	if err != nil {
		return AnalysisRecord{}, err
	}
	record.FilesCount = int(filesCount)

	if record.ProcessingTime, err = dynamoNumber(item, "processing_time"); err != nil {
		return AnalysisRecord{}, err
	}

	if list, ok := item["file_names"].(*types.AttributeValueMemberL); ok {
		record.FileNames = make([]string, 0, len(list.Value))
		for _, entry := range list.Value {
			if s, ok := entry.(*types.AttributeValueMemberS); ok {
				record.FileNames = append(record.FileNames, s.Value)
			}
		}
	}

	resultBlob, err := dynamoString(item, "result")
	if err != nil {
		return AnalysisRecord{}, err
	}
	if err := json.Unmarshal([]byte(resultBlob), &record.Result); err != nil {
		return AnalysisRecord{}, err
	}
	return record, nil
}

func dynamoString(item map[string]types.AttributeValue, key string) (string, error) {
	attr, ok := item[key].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("dynamo item missing string attribute %q", key)
	}
	return attr.Value, nil
}

func dynamoNumber(item map[string]types.AttributeValue, key string) (float64, error) {
	attr, ok := item[key].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("dynamo item missing number attribute %q", key)
	}
	return strconv.ParseFloat(attr.Value, 64)
}

func formatUnixSeconds(t time.Time) string {
	return strconv.FormatFloat(unixSeconds(t), 'f', 6, 64)
}

func timeFromUnixSeconds(seconds float64) time.Time {
	sec, frac := math.Modf(seconds)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}

var _ Repo = (*DynamoRepo)(nil)
