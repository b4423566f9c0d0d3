package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"expense-assistant/internal/domain"
)

// Expenses are stored with group_code as the partition key and
// sk = "<spent_at>#<id>" as the sort key, so a date range is a key range.
const (
	attrGroupCode = "group_code"
	attrSortKey   = "sk"
	skSeparator   = "#"
	// skUpperBound sorts after every id character that can follow the separator.
	skUpperBound = "~"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoClient.
// Defined here for testability.
type dynamodbAPI interface {
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoClient reads expenses from a DynamoDB table.
type DynamoClient struct {
	api       dynamodbAPI
	tableName string
}

func NewDynamoClient(api dynamodbAPI, tableName string) (*DynamoClient, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DynamoClient{api: api, tableName: tableName}, nil
}

// FindExpenses queries one group's partition, bounded by the date range when
// present. DynamoDB has no case-insensitive contains, so the term is applied
// to each page before counting towards the limit.
func (c *DynamoClient) FindExpenses(ctx context.Context, q domain.ExpenseQuery) ([]domain.StoredExpense, error) {
	in := buildDynamoQuery(c.tableName, q)
	matcher := newTermMatcher(q.Term)

	var rows []domain.StoredExpense
	for {
		out, err := c.api.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("repository: FindExpenses query: %w", err)
		}
		for _, item := range out.Items {
			row := itemToExpense(item)
			if !matcher.matches(row) {
				continue
			}
			rows = append(rows, row)
			if q.Limit > 0 && len(rows) >= q.Limit {
				return rows, nil
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			return rows, nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func buildDynamoQuery(table string, q domain.ExpenseQuery) *dynamodb.QueryInput {
	names := map[string]string{
		"#g": attrGroupCode,
		"#a": "amount",
		"#c": "category",
		"#t": "title",
		"#d": "spent_at",
		"#s": attrSortKey,
	}
	values := map[string]types.AttributeValue{
		":g": &types.AttributeValueMemberS{Value: q.GroupCode},
	}
	keyCond := "#g = :g"
	if q.Range != nil {
		keyCond += " AND #s BETWEEN :from AND :to"
		values[":from"] = &types.AttributeValueMemberS{Value: q.Range.From}
		values[":to"] = &types.AttributeValueMemberS{Value: q.Range.To + skSeparator + skUpperBound}
	}
	return &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    aws.String(keyCond),
		ProjectionExpression:      aws.String("#a, #c, #t, #d, #s"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}
}

// itemToExpense converts a DynamoDB attribute map to a StoredExpense. Missing
// attributes are left empty; amount keeps its textual number form.
func itemToExpense(item map[string]types.AttributeValue) domain.StoredExpense {
	row := domain.StoredExpense{
		Title:    strAttr(item, "title"),
		Category: strAttr(item, "category"),
		SpentAt:  strAttr(item, "spent_at"),
	}
	if row.SpentAt == "" {
		row.SpentAt, _, _ = strings.Cut(strAttr(item, attrSortKey), skSeparator)
	}
	switch v := item["amount"].(type) {
	case *types.AttributeValueMemberN:
		row.Amount = v.Value
	case *types.AttributeValueMemberS:
		row.Amount = v.Value
	}
	return row
}

func strAttr(item map[string]types.AttributeValue, key string) string {
	if s, ok := item[key].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
