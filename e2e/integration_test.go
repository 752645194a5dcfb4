//go:build e2e

// Package e2e contains end-to-end integration tests against real backends.
// Run with: go test -tags=e2e -v ./e2e/...
//
// Redis tests need RSTORE_E2E_REDIS_ADDR (e.g. 127.0.0.1:6379); the selected
// database is flushed at startup. DynamoDB tests need RSTORE_E2E_DYNAMO=1
// and AWS credentials in the environment; a pay-per-request table is created
// for the run and deleted afterwards.
package e2e

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/danielmunro/rstore/conn"
	"github.com/danielmunro/rstore/conn/dynamo"
	"github.com/danielmunro/rstore/conn/goredis"
	"github.com/danielmunro/rstore/schema"
	"github.com/danielmunro/rstore/store"
)

const redisDB = 15

const modelsYAML = `
user:
  id: {type: integer, index: true}
  full_name: {type: string}
  handle: {type: string, unique: true, maxlength: 100}
  articles: {type: array, ref: article}
  email_addresses: {type: array}

article:
  id: {type: integer, index: true}
  title: {type: string, default: New article}
  url: {type: string}

visit:
  id: {type: integer, index: true}
  session: {type: string}
`

var (
	registry *schema.Registry

	redisClient *redis.Client
	ddbClient   *dynamodb.Client
	dynamoTable string

	backends = map[string]conn.Conn{}
)

func TestMain(m *testing.M) {
	var err error
	registry, err = schema.Parse([]byte(modelsYAML))
	if err != nil {
		fmt.Printf("parse schema: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if addr := os.Getenv("RSTORE_E2E_REDIS_ADDR"); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr, DB: redisDB})
		c := goredis.New(redisClient)
		if err := c.Clear(ctx); err != nil {
			fmt.Printf("flush redis: %v\n", err)
			os.Exit(1)
		}
		backends["redis"] = c
	}

	if os.Getenv("RSTORE_E2E_DYNAMO") == "1" {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			fmt.Printf("load aws config: %v\n", err)
			os.Exit(1)
		}
		ddbClient = dynamodb.NewFromConfig(cfg)
		dynamoTable = "rstore-e2e-" + uuid.New().String()[:8]
		if err := createTable(ctx); err != nil {
			fmt.Printf("create table: %v\n", err)
			os.Exit(1)
		}
		backends["dynamo"] = dynamo.New(ddbClient, dynamoTable)
	}

	if len(backends) == 0 {
		fmt.Println("no backends configured, set RSTORE_E2E_REDIS_ADDR or RSTORE_E2E_DYNAMO=1")
		os.Exit(0)
	}

	code := m.Run()

	if ddbClient != nil {
		if err := deleteTable(ctx); err != nil {
			fmt.Printf("delete table: %v\n", err)
		}
	}
	os.Exit(code)
}

func createTable(ctx context.Context) error {
	_, err := ddbClient.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(dynamoTable),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return err
	}
	waiter := dynamodb.NewTableExistsWaiter(ddbClient)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(dynamoTable),
	}, 2*time.Minute)
}

func deleteTable(ctx context.Context) error {
	_, err := ddbClient.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(dynamoTable),
	})
	return err
}

func eachBackend(t *testing.T, fn func(t *testing.T, repo *store.Repository)) {
	t.Helper()
	for name, c := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, store.New(c, registry))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *store.Repository) {
		ctx := context.Background()
		handle := "e2e-" + uuid.NewString()

		user, err := repo.Create("user", map[string]store.Value{
			"full_name": &store.StringValue{Value: "Dan Munro"},
			"handle":    &store.StringValue{Value: handle},
			"email_addresses": &store.ListValue{Values: []store.Value{
				&store.StringValue{Value: "dan@danmunro.com"},
			}},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		articles := make([]store.Value, 0, 2)
		for i := 1; i <= 2; i++ {
			article, err := repo.Create("article", map[string]store.Value{
				"url": &store.StringValue{Value: fmt.Sprintf("/%s/%d", handle, i)},
			})
			if err != nil {
				t.Fatalf("create article: %v", err)
			}
			articles = append(articles, &store.ModelValue{Instance: article})
		}
		user.Set("articles", &store.ListValue{Values: articles})

		if err := repo.Save(ctx, user); err != nil {
			t.Fatalf("save: %v", err)
		}
		if user.ID <= 0 {
			t.Fatalf("expected assigned id, got %d", user.ID)
		}

		loaded, err := repo.LoadByIndex(ctx, "user", "handle", &store.StringValue{Value: handle})
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded == nil || loaded.ID != user.ID {
			t.Fatalf("expected user %d, got %+v", user.ID, loaded)
		}
		if got := loaded.String("full_name"); got != "Dan Munro" {
			t.Errorf("expected full_name 'Dan Munro', got %q", got)
		}
		if got := loaded.List("articles"); len(got) != 2 {
			t.Errorf("expected 2 articles, got %d", len(got))
		}
		if got := loaded.List("email_addresses"); len(got) != 1 {
			t.Errorf("expected 1 address, got %d", len(got))
		}
	})
}

func TestInsertionOrder(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *store.Repository) {
		ctx := context.Background()

		ids := make([]int64, 0, 3)
		for i := 0; i < 3; i++ {
			visit, err := repo.Create("visit", map[string]store.Value{
				"session": &store.StringValue{Value: uuid.NewString()},
			})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if err := repo.Save(ctx, visit); err != nil {
				t.Fatalf("save: %v", err)
			}
			ids = append(ids, visit.ID)
		}

		// The backend may hold visits from earlier tests in this run, so
		// assert against the newest window only.
		latest, err := repo.LoadReverse(ctx, "visit", 0, 2)
		if err != nil {
			t.Fatalf("load reverse: %v", err)
		}
		if len(latest) != 3 {
			t.Fatalf("expected 3 visits, got %d", len(latest))
		}
		for i, visit := range latest {
			expected := ids[len(ids)-1-i]
			if visit.ID != expected {
				t.Errorf("expected id %d at position %d, got %d", expected, i, visit.ID)
			}
		}
	})
}

func TestConcurrentSaves(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *store.Repository) {
		ctx := context.Background()
		const workers = 20

		var wg sync.WaitGroup
		idCh := make(chan int64, workers)
		errCh := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				visit, err := repo.Create("visit", map[string]store.Value{
					"session": &store.StringValue{Value: uuid.NewString()},
				})
				if err != nil {
					errCh <- err
					return
				}
				if err := repo.Save(ctx, visit); err != nil {
					errCh <- err
					return
				}
				idCh <- visit.ID
			}()
		}
		wg.Wait()
		close(idCh)
		close(errCh)

		for err := range errCh {
			t.Fatalf("concurrent save: %v", err)
		}
		seen := make(map[int64]bool, workers)
		for id := range idCh {
			if seen[id] {
				t.Errorf("duplicate id %d", id)
			}
			seen[id] = true
		}
		if len(seen) != workers {
			t.Errorf("expected %d distinct ids, got %d", workers, len(seen))
		}
	})
}

func TestUniqueHandle(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *store.Repository) {
		ctx := context.Background()
		handle := "e2e-" + uuid.NewString()

		first, err := repo.Create("user", map[string]store.Value{
			"handle": &store.StringValue{Value: handle},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := repo.Save(ctx, first); err != nil {
			t.Fatalf("save: %v", err)
		}

		second, err := repo.Create("user", map[string]store.Value{
			"handle": &store.StringValue{Value: handle},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		err = repo.Save(ctx, second)
		var vErr *store.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.Property != "handle" {
			t.Errorf("expected handle violation, got %v", vErr)
		}
	})
}
