package cache

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

// DefaultDynamoDBTable is the table name used when none is configured.
const DefaultDynamoDBTable = "JBFCCache"

// DynamoDBAPI is the subset of the DynamoDB client used by the store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoDBConfig configures NewDynamoDBFromConfig.
type DynamoDBConfig struct {
	Table    string
	Region   string
	Endpoint string // optional, e.g. DynamoDB Local
}

type dynamoStore struct {
	client DynamoDBAPI
	table  string
	cfg    config
}

var _ Store = (*dynamoStore)(nil)

// NewDynamoDB returns a Store backed by a DynamoDB table with the hash key
// "cache_type" and the range key "cache_key". Values are kept in the binary
// attribute "value" and the expiry in the number attribute "expire_at"
// (epoch seconds), which also suits DynamoDB's own TTL feature.
func NewDynamoDB(client DynamoDBAPI, table string, opts ...Option) Store {
	if table == "" {
		table = DefaultDynamoDBTable
	}
	return &dynamoStore{client: client, table: table, cfg: applyOptions(opts)}
}

// NewDynamoDBFromConfig loads the default AWS configuration for the region
// and returns a DynamoDB backed Store.
func NewDynamoDBFromConfig(ctx context.Context, dc DynamoDBConfig, opts ...Option) (Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(dc.Region)}
	if dc.Endpoint != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "cache: load aws config")
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if dc.Endpoint != "" {
			o.BaseEndpoint = aws.String(dc.Endpoint)
		}
	})
	return NewDynamoDB(client, dc.Table, opts...), nil
}

func (c *dynamoStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.cfg.queryTimeout)
}

func (c *dynamoStore) itemKey(key Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"cache_type": &types.AttributeValueMemberS{Value: string(key.Namespace)},
		"cache_key":  &types.AttributeValueMemberS{Value: key.ID},
	}
}

func (c *dynamoStore) Get(ctx context.Context, key Key) (bool, Entry, error) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	out, err := c.client.GetItem(qctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key:       c.itemKey(key),
	})
	if err != nil {
		return false, Entry{}, unavailable(err, "get", key)
	}
	if len(out.Item) == 0 {
		return false, Entry{}, nil
	}
	var entry Entry
	switch v := out.Item["value"].(type) {
	case *types.AttributeValueMemberB:
		entry.Value = v.Value
	case *types.AttributeValueMemberS:
		entry.Value = []byte(v.Value)
	default:
		return false, Entry{}, unavailable(errors.Newf("unexpected value attribute %T", v), "get", key)
	}
	n, ok := out.Item["expire_at"].(*types.AttributeValueMemberN)
	if !ok {
		return false, Entry{}, unavailable(errors.New("missing expire_at attribute"), "get", key)
	}
	sec, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return false, Entry{}, unavailable(err, "get", key)
	}
	entry.ExpireAt = fromEpochSeconds(sec)
	return true, entry, nil
}

func (c *dynamoStore) Put(ctx context.Context, key Key, entry Entry) error {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	item := c.itemKey(key)
	item["value"] = &types.AttributeValueMemberB{Value: entry.Value}
	item["expire_at"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(epochSeconds(entry.ExpireAt), 10)}
	_, err := c.client.PutItem(qctx, &dynamodb.PutItemInput{
		TableName:              aws.String(c.table),
		Item:                   item,
		ReturnConsumedCapacity: types.ReturnConsumedCapacityNone,
	})
	return unavailable(err, "put", key)
}

func (c *dynamoStore) Ping(ctx context.Context) error {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	_, err := c.client.DescribeTable(qctx, &dynamodb.DescribeTableInput{TableName: aws.String(c.table)})
	return err
}

// Close is a no-op; the DynamoDB client holds no resources that need release.
func (c *dynamoStore) Close() error {
	return nil
}
