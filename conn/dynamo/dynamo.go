// Package dynamo adapts a DynamoDB client to the conn.Conn capability set.
//
// All keys live in a single table with a composite primary key. Hash fields
// are stored as one item per field (pk = hash key, sk = "field#" + field),
// so field writes and atomic increments touch a single item. Lists are
// stored as one item holding a DynamoDB list attribute, appended with
// list_append. Range reads fetch the whole list and slice client-side with
// Redis LRANGE semantics.
//
// A field written with SetField holds a string attribute; a field created
// by IncrBy holds a number. Incrementing a field previously written as a
// string fails with a type mismatch, so counters must only ever be
// incremented, which is how the repository uses them.
package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	fieldPrefix = "field#"
	listSK      = "list"
	valueAttr   = "v"
)

// Conn wraps a DynamoDB client and a table name. The table must have a
// string partition key "pk" and a string sort key "sk".
type Conn struct {
	client *dynamodb.Client
	table  string
	logger *zap.Logger
}

// Option configures a Conn.
type Option func(*Conn)

// WithLogger attaches a logger; each primitive is logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Conn) {
		c.logger = logger
	}
}

// New creates a Conn over an already-configured DynamoDB client.
func New(client *dynamodb.Client, table string, opts ...Option) *Conn {
	c := &Conn{
		client: client,
		table:  table,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
		"sk": &types.AttributeValueMemberS{Value: sk},
	}
}

// Append appends value to the list at listKey via list_append, creating the
// list attribute on first use.
func (c *Conn) Append(ctx context.Context, listKey, value string) error {
	c.logger.Debug("append", zap.String("key", listKey), zap.String("value", value))

	element, err := attributevalue.MarshalList([]string{value})
	if err != nil {
		return fmt.Errorf("marshal element: %w", err)
	}
	_, err = c.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(c.table),
		Key:                      itemKey(listKey, listSK),
		UpdateExpression:         aws.String("SET #v = list_append(if_not_exists(#v, :empty), :element)"),
		ExpressionAttributeNames: map[string]string{"#v": valueAttr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty":   &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":element": &types.AttributeValueMemberL{Value: element},
		},
	})
	return err
}

// SetField upserts one hash field as its own item.
func (c *Conn) SetField(ctx context.Context, key, field, value string) error {
	c.logger.Debug("set field", zap.String("key", key), zap.String("field", field), zap.String("value", value))

	item := itemKey(key, fieldPrefix+field)
	item[valueAttr] = &types.AttributeValueMemberS{Value: value}
	_, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	return err
}

// GetField returns one hash field, reporting false when absent.
func (c *Conn) GetField(ctx context.Context, key, field string) (string, bool, error) {
	c.logger.Debug("get field", zap.String("key", key), zap.String("field", field))

	result, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key:       itemKey(key, fieldPrefix+field),
	})
	if err != nil {
		return "", false, err
	}
	if result.Item == nil {
		return "", false, nil
	}
	v, ok := attrString(result.Item[valueAttr])
	return v, ok, nil
}

// GetAllFields queries every field item under key and returns the snapshot.
func (c *Conn) GetAllFields(ctx context.Context, key string) (map[string]string, error) {
	c.logger.Debug("get all fields", zap.String("key", key))

	fields := make(map[string]string)
	paginator := dynamodb.NewQueryPaginator(c.client, &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: key},
			":prefix": &types.AttributeValueMemberS{Value: fieldPrefix},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			sk, ok := attrString(item["sk"])
			if !ok {
				continue
			}
			if v, ok := attrString(item[valueAttr]); ok {
				fields[strings.TrimPrefix(sk, fieldPrefix)] = v
			}
		}
	}
	return fields, nil
}

// IncrBy atomically adds amount to a numeric field item via ADD and returns
// the new value.
func (c *Conn) IncrBy(ctx context.Context, key, field string, amount int64) (int64, error) {
	c.logger.Debug("incr field", zap.String("key", key), zap.String("field", field), zap.Int64("amount", amount))

	result, err := c.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(c.table),
		Key:                      itemKey(key, fieldPrefix+field),
		UpdateExpression:         aws.String("ADD #v :amount"),
		ExpressionAttributeNames: map[string]string{"#v": valueAttr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":amount": &types.AttributeValueMemberN{Value: strconv.FormatInt(amount, 10)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, err
	}
	n, ok := result.Attributes[valueAttr].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("dynamo: field %s of %s is not a number", field, key)
	}
	return strconv.ParseInt(n.Value, 10, 64)
}

// Range returns list elements between start and stop inclusive, with Redis
// LRANGE semantics.
func (c *Conn) Range(ctx context.Context, listKey string, start, stop int64) ([]string, error) {
	c.logger.Debug("range", zap.String("key", listKey), zap.Int64("start", start), zap.Int64("stop", stop))

	list, err := c.list(ctx, listKey)
	if err != nil {
		return nil, err
	}
	return sliceRange(list, start, stop), nil
}

// Len returns the element count of the list at listKey.
func (c *Conn) Len(ctx context.Context, listKey string) (int64, error) {
	c.logger.Debug("len", zap.String("key", listKey))

	list, err := c.list(ctx, listKey)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

// Clear scans the table and deletes every item. Administrative and test
// use only.
func (c *Conn) Clear(ctx context.Context) error {
	c.logger.Debug("clear")

	paginator := dynamodb.NewScanPaginator(c.client, &dynamodb.ScanInput{
		TableName:            aws.String(c.table),
		ProjectionExpression: aws.String("pk, sk"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, item := range page.Items {
			_, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(c.table),
				Key: map[string]types.AttributeValue{
					"pk": item["pk"],
					"sk": item["sk"],
				},
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Conn) list(ctx context.Context, listKey string) ([]string, error) {
	result, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key:       itemKey(listKey, listSK),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, nil
	}
	attr, ok := result.Item[valueAttr].(*types.AttributeValueMemberL)
	if !ok {
		return nil, nil
	}
	list := make([]string, 0, len(attr.Value))
	for _, element := range attr.Value {
		if s, ok := attrString(element); ok {
			list = append(list, s)
		}
	}
	return list, nil
}

// attrString extracts a string from an S or N attribute value.
func attrString(attr types.AttributeValue) (string, bool) {
	switch v := attr.(type) {
	case *types.AttributeValueMemberS:
		return v.Value, true
	case *types.AttributeValueMemberN:
		return v.Value, true
	}
	return "", false
}

// sliceRange applies Redis LRANGE semantics to an in-memory list.
func sliceRange(list []string, start, stop int64) []string {
	length := int64(len(list))
	if start < 0 {
		start += length
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += length
	}
	if stop >= length {
		stop = length - 1
	}
	if start > stop || start >= length || stop < 0 {
		return nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out
}
