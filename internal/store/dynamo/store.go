// Package dynamo is the DynamoDB binding of the store capabilities. Visits
// and contact messages share one table keyed by the string attribute "id".
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"portfolio/internal/models"
	"portfolio/internal/store"
)

// Item type markers stored in the "type" attribute.
const (
	typeCounter = "counter"
	typeContact = "contact"
)

// visitItem is the counter item. Times are stored as RFC 3339 strings.
type visitItem struct {
	ID            string    `dynamodbav:"id"`
	Type          string    `dynamodbav:"type"`
	VisitCount    int64     `dynamodbav:"visitCount"`
	CreatedAt     time.Time `dynamodbav:"createdAt"`
	LastVisit     time.Time `dynamodbav:"lastVisit"`
	LastVisitorIP string    `dynamodbav:"lastVisitorIP"`
}

// contactItem is a stored contact message. The timestamp keeps the
// millisecond API layout.
type contactItem struct {
	ID        string `dynamodbav:"id"`
	Type      string `dynamodbav:"type"`
	Name      string `dynamodbav:"name"`
	Email     string `dynamodbav:"email"`
	Subject   string `dynamodbav:"subject"`
	Message   string `dynamodbav:"message"`
	Timestamp string `dynamodbav:"timestamp"`
	IPAddress string `dynamodbav:"ipAddress"`
	UserAgent string `dynamodbav:"userAgent"`
	Status    string `dynamodbav:"status"`
}

func newContactItem(msg *models.ContactMessage) contactItem {
	return contactItem{
		ID:        msg.ID,
		Type:      typeContact,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Message,
		Timestamp: models.FormatTimestamp(msg.Timestamp),
		IPAddress: msg.IPAddress,
		UserAgent: msg.UserAgent,
		Status:    msg.Status,
	}
}

// API is the subset of the DynamoDB client the store calls.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Store implements store.Store and store.AtomicIncrementer.
type Store struct {
	api   API
	table string
}

var (
	_ store.Store             = (*Store)(nil)
	_ store.AtomicIncrementer = (*Store)(nil)
)

// Options configure the DynamoDB client.
type Options struct {
	Endpoint        string // empty uses the regional AWS endpoint
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Table           string
}

// New builds a client from static credentials and checks the table exists.
func New(ctx context.Context, opts Options) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	s := NewWithAPI(client, opts.Table)
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NewWithAPI wraps an existing client.
func NewWithAPI(api API, table string) *Store {
	return &Store{api: api, table: table}
}

func key(id string) (map[string]types.AttributeValue, error) {
	k, err := attributevalue.MarshalMap(map[string]string{"id": id})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	return k, nil
}

// IncrementVisits adds one to visitCount with an atomic ADD update,
// creating the item if needed.
func (s *Store) IncrementVisits(ctx context.Context, id, ip string, at time.Time) (*models.VisitRecord, error) {
	k, err := key(id)
	if err != nil {
		return nil, err
	}
	values, err := attributevalue.MarshalMap(map[string]any{
		":now":  at.UTC(),
		":ip":   ip,
		":type": typeCounter,
		":one":  1,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal update values: %w", err)
	}
	out, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              k,
		UpdateExpression: aws.String("SET lastVisit = :now, lastVisitorIP = :ip, createdAt = if_not_exists(createdAt, :now), #type = :type ADD visitCount :one"),
		ExpressionAttributeNames: map[string]string{
			"#type": "type",
		},
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("update visit record: %w", err)
	}
	return decodeVisitRecord(id, out.Attributes)
}

// GetVisitRecord reads the counter item with a consistent read.
func (s *Store) GetVisitRecord(ctx context.Context, id string) (*models.VisitRecord, error) {
	k, err := key(id)
	if err != nil {
		return nil, err
	}
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            k,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get visit record: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, store.ErrNotFound
	}
	return decodeVisitRecord(id, out.Item)
}

// CreateContactMessage puts the message unless the ID already exists.
func (s *Store) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	item, err := attributevalue.MarshalMap(newContactItem(msg))
	if err != nil {
		return fmt.Errorf("marshal contact message: %w", err)
	}
	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return store.ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("put contact message: %w", err)
	}
	return nil
}

// Ping describes the table.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err != nil {
		return fmt.Errorf("describe table %s: %w", s.table, err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no connections that need releasing.
func (s *Store) Close() error {
	return nil
}

func decodeVisitRecord(id string, item map[string]types.AttributeValue) (*models.VisitRecord, error) {
	if _, ok := item["visitCount"].(*types.AttributeValueMemberN); !ok {
		return nil, errors.New("visit record has no numeric visitCount")
	}
	var v visitItem
	if err := attributevalue.UnmarshalMap(item, &v); err != nil {
		return nil, fmt.Errorf("decode visit record: %w", err)
	}
	return &models.VisitRecord{
		ID:            id,
		VisitCount:    v.VisitCount,
		CreatedAt:     v.CreatedAt,
		LastVisit:     v.LastVisit,
		LastVisitorIP: v.LastVisitorIP,
	}, nil
}
