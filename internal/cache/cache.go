package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// MaxPayloadBytes keeps items under the 400 KB DynamoDB item limit with
// room for the key attributes.
const MaxPayloadBytes = 350 * 1024

const sortKey = "DETECT#v1"

type DDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type item struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Source    string `dynamodbav:"Source"`
	Payload   string `dynamodbav:"Payload"`
	CreatedAt int64  `dynamodbav:"CreatedAt"`
	ExpiresAt int64  `dynamodbav:"ExpiresAt"`
}

// Cache stores DetectDocumentText blocks per document. DynamoDB TTL
// deletion lags, so ExpiresAt is also checked on read.
type Cache struct {
	ddb   DDBClient
	table string
	ttl   time.Duration
	now   func() time.Time
}

func New(ddb DDBClient, table string, ttl time.Duration) *Cache {
	return &Cache{ddb: ddb, table: table, ttl: ttl, now: time.Now}
}

func MakePK(cacheKey string) string {
	sum := sha256.Sum256([]byte(cacheKey))
	return "DOC#" + hex.EncodeToString(sum[:])
}

func (c *Cache) Get(ctx context.Context, cacheKey string) ([]types.Block, bool, error) {
	out, err := c.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: MakePK(cacheKey)},
			"SK": &ddbtypes.AttributeValueMemberS{Value: sortKey},
		},
		ConsistentRead: aws.Bool(false),
	})
	if err != nil {
		return nil, false, fmt.Errorf("cache GetItem: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, false, nil
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, false, nil
	}
	if it.ExpiresAt > 0 && c.now().UTC().Unix() >= it.ExpiresAt {
		return nil, false, nil
	}

	var blocks []types.Block
	if err := json.Unmarshal([]byte(it.Payload), &blocks); err != nil {
		return nil, false, nil
	}
	if blocks == nil {
		blocks = []types.Block{}
	}
	return blocks, true, nil
}

// Put reports false without writing when the payload is too large.
func (c *Cache) Put(ctx context.Context, cacheKey, sourceRef string, blocks []types.Block) (bool, error) {
	b, err := json.Marshal(blocks)
	if err != nil {
		return false, fmt.Errorf("cache marshal blocks: %w", err)
	}
	if len(b) > MaxPayloadBytes {
		return false, nil
	}

	now := c.now().UTC().Unix()
	av, err := attributevalue.MarshalMap(item{
		PK:        MakePK(cacheKey),
		SK:        sortKey,
		Source:    sourceRef,
		Payload:   string(b),
		CreatedAt: now,
		ExpiresAt: now + int64(c.ttl/time.Second),
	})
	if err != nil {
		return false, fmt.Errorf("cache marshal item: %w", err)
	}

	if _, err := c.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      av,
	}); err != nil {
		return false, fmt.Errorf("cache PutItem: %w", err)
	}
	return true, nil
}
