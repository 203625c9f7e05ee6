package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI は DynamoStore が利用する DynamoDB クライアントの操作です。
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoOptions は DynamoDB クライアント生成時の設定です。
type DynamoOptions struct {
	Region          string
	Endpoint        string // dynamodb-local 等を使う場合に指定
	AccessKeyID     string
	SecretAccessKey string
}

// テストで差し替えられるようにしています。
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig
	newDynamoFromConfig  = func(cfg aws.Config, optFns ...func(*dynamodb.Options)) DynamoAPI {
		return dynamodb.NewFromConfig(cfg, optFns...)
	}
)

// NewDynamoClient は設定から DynamoDB クライアントを生成します。
func NewDynamoClient(ctx context.Context, opts DynamoOptions) (DynamoAPI, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return newDynamoFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}

// DynamoStore はユーザー情報を DynamoDB テーブル（パーティションキー: email）に保存します。
type DynamoStore struct {
	client DynamoAPI
	table  string
}

// NewDynamoStore は DynamoStore を作成します。
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// Get はユーザー情報を強い整合性で取得します。
func (s *DynamoStore) Get(ctx context.Context, email string) (*Record, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"email": &types.AttributeValueMemberS{Value: email},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var record Record
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, fmt.Errorf("dynamodb unmarshal item: %w", err)
	}
	return &record, nil
}

// Create は attribute_not_exists 条件付きでユーザー情報を保存します。
func (s *DynamoStore) Create(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	if record.Email == "" {
		return fmt.Errorf("record.Email is required")
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("dynamodb marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("dynamodb put item: %w", err)
	}
	return nil
}
