package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/pastebin-lite/pastebin-lite/models"
)

var _ PasteStore = (*DynamoStore)(nil)

// DynamoStore implements PasteStore using DynamoDB. Timestamps are stored as
// epoch milliseconds; the ttl attribute (epoch seconds) drives DynamoDB's
// native item expiry for storage reclamation.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewDynamoStore creates a DynamoDB storage backend for the given table.
func NewDynamoStore(ctx context.Context, tableName, region string) (*DynamoStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &DynamoStore{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
	}, nil
}

// Create puts a new paste item, failing if the id is already taken.
func (d *DynamoStore) Create(ctx context.Context, paste *models.Paste) error {
	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.tableName),
		Item:                pasteToItem(paste),
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if isConditionFailed(err) {
		return ErrDuplicateID
	}
	return err
}

// Get retrieves a paste item by id.
func (d *DynamoStore) Get(ctx context.Context, id string) (*models.Paste, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key:       pasteKey(id),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}
	return itemToPaste(result.Item), nil
}

// ConsumeView increments view_count with a conditional UpdateItem: DynamoDB
// evaluates the condition and applies the ADD as one serialized write, so
// concurrent viewers cannot overrun the limit.
func (d *DynamoStore) ConsumeView(ctx context.Context, id string, now time.Time) (*models.Paste, error) {
	out, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(d.tableName),
		Key:              pasteKey(id),
		UpdateExpression: aws.String("ADD view_count :one"),
		ConditionExpression: aws.String(
			"attribute_exists(id)" +
				" AND (attribute_not_exists(expires_at) OR expires_at > :now)" +
				" AND (attribute_not_exists(max_views) OR view_count < max_views)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.UnixMilli(), 10)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err == nil {
		return itemToPaste(out.Attributes), nil
	}
	if !isConditionFailed(err) {
		return nil, err
	}

	// Condition failed; re-read the item to classify why.
	existing, getErr := d.Get(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if avail := models.CheckAvailability(existing, now); !avail.Available {
		if avail.Reason == models.ReasonExpired {
			return nil, ErrExpired
		}
		return nil, ErrViewLimit
	}
	return nil, ErrNotFound
}

// Delete removes a paste item; unknown ids are ignored.
func (d *DynamoStore) Delete(ctx context.Context, id string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key:       pasteKey(id),
	})
	return err
}

// PurgeExpired is a no-op: the table's ttl attribute handles reclamation.
func (d *DynamoStore) PurgeExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// Ping verifies the table is reachable.
func (d *DynamoStore) Ping(ctx context.Context) error {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
	return err
}

// Close is a no-op for DynamoDB.
func (d *DynamoStore) Close() error { return nil }

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func pasteKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func pasteToItem(paste *models.Paste) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"id":         &types.AttributeValueMemberS{Value: paste.ID},
		"content":    &types.AttributeValueMemberS{Value: paste.Content},
		"created_at": &types.AttributeValueMemberN{Value: strconv.FormatInt(paste.CreatedAt.UnixMilli(), 10)},
		"view_count": &types.AttributeValueMemberN{Value: strconv.Itoa(paste.ViewCount)},
	}
	if paste.ExpiresAt != nil {
		item["expires_at"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(paste.ExpiresAt.UnixMilli(), 10)}
		item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(paste.ExpiresAt.Unix(), 10)}
	}
	if paste.MaxViews != nil {
		item["max_views"] = &types.AttributeValueMemberN{Value: strconv.Itoa(*paste.MaxViews)}
	}
	return item
}

func itemToPaste(item map[string]types.AttributeValue) *models.Paste {
	paste := &models.Paste{}

	if id, ok := item["id"].(*types.AttributeValueMemberS); ok {
		paste.ID = id.Value
	}
	if content, ok := item["content"].(*types.AttributeValueMemberS); ok {
		paste.Content = content.Value
	}
	if createdAt, ok := item["created_at"].(*types.AttributeValueMemberN); ok {
		if ms, err := strconv.ParseInt(createdAt.Value, 10, 64); err == nil {
			paste.CreatedAt = time.UnixMilli(ms).UTC()
		}
	}
	if expiresAt, ok := item["expires_at"].(*types.AttributeValueMemberN); ok {
		if ms, err := strconv.ParseInt(expiresAt.Value, 10, 64); err == nil {
			expiry := time.UnixMilli(ms).UTC()
			paste.ExpiresAt = &expiry
		}
	}
	if maxViews, ok := item["max_views"].(*types.AttributeValueMemberN); ok {
		if n, err := strconv.Atoi(maxViews.Value); err == nil {
			paste.MaxViews = &n
		}
	}
	if viewCount, ok := item["view_count"].(*types.AttributeValueMemberN); ok {
		if n, err := strconv.Atoi(viewCount.Value); err == nil {
			paste.ViewCount = n
		}
	}
	return paste
}
