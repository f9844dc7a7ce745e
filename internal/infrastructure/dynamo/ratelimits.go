package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-notify-dispatch/internal/domain"
)

// RateLimitRepo provides typed DynamoDB operations for the rate_limits table.
type RateLimitRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRateLimitRepo(client *dynamodb.Client, tableName string) *RateLimitRepo {
	return &RateLimitRepo{client: client, tableName: tableName}
}

// Admit is a single atomic increment-and-check, never read-then-write.
// Two conditional operations cover the three cases:
//
//  1. UpdateItem increments send_count only while the stored window is still
//     open and under capacity.
//  2. If that condition fails, PutItem starts a fresh window (count=1) only
//     when the row is missing or its window has gone stale.
//  3. If that condition fails too, the open window is at capacity: deny.
//
// Concurrent workers racing on the same key serialize on DynamoDB's
// conditional writes, so the counter can never pass capacity.
func (r *RateLimitRepo) Admit(ctx context.Context, key string, now time.Time, window time.Duration, capacity int) (bool, error) {
	nowMs := now.UnixMilli()
	// The window is stale once now - window_start exceeds the window length.
	cutoff := nowMs - window.Milliseconds()

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("rate_key", key),
		UpdateExpression:    aws.String("SET send_count = send_count + :one"),
		ConditionExpression: aws.String("window_start >= :cutoff AND send_count < :cap"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one":    numAttr(1),
			":cutoff": numAttr(cutoff),
			":cap":    numAttr(int64(capacity)),
		},
	})
	if err == nil {
		return true, nil
	}
	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		return false, fmt.Errorf("increment window for %s: %w", key, err)
	}

	item, err := attributevalue.MarshalMap(&domain.RateLimitState{
		Key:         key,
		WindowStart: nowMs,
		Count:       1,
		ExpiresAt:   now.Add(2 * window).Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("marshal rate limit state: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(rate_key) OR window_start < :cutoff"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cutoff": numAttr(cutoff),
		},
	})
	if err == nil {
		return true, nil
	}
	if errors.As(err, &ccf) {
		// Live window already at capacity.
		return false, nil
	}
	return false, fmt.Errorf("reset window for %s: %w", key, err)
}

func (r *RateLimitRepo) Get(ctx context.Context, key string) (*domain.RateLimitState, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("rate_key", key),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, domain.ErrNotFound
	}
	var st domain.RateLimitState
	if err := attributevalue.UnmarshalMap(out.Item, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

func numAttr(n int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}
