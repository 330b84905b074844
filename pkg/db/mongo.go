package db

import (
	"context"
	"fmt"
	"strings"

	"news-pull/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists articles in a Mongo collection. Document identity is the
// trimmed (title, description) pair; everything else is payload.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewStore creates a store for the given connection string, database and
// collection. The connection is established lazily; call Connect to verify
// reachability.
func NewStore(uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Connect verifies the server is reachable.
func (s *Store) Connect(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close tears down the connection pool.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the identity index and the category index used by
// the query path.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}, {Key: "description", Value: 1}}},
		{Keys: bson.D{{Key: "rss_categories", Value: 1}}},
	}
	if _, err := s.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Upsert inserts the article, or fully replaces the stored document whose
// trimmed (title, description) pair matches. The single UpdateOne call
// keeps the operation atomic under concurrent ingestion of the same
// article from two feeds.
func (s *Store) Upsert(ctx context.Context, article domain.Article) error {
	article.Title = strings.TrimSpace(article.Title)
	article.Description = strings.TrimSpace(article.Description)

	filter := identityFilter(article.Title, article.Description)
	update := bson.M{"$set": article}
	opts := options.Update().SetUpsert(true)

	if _, err := s.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("upsert article %q: %w", article.Title, err)
	}
	return nil
}

// ByCategory returns projections of every article in the category.
func (s *Store) ByCategory(ctx context.Context, category string) ([]domain.Projection, error) {
	return s.findProjections(ctx, categoryFilter(category))
}

// ByTag returns projections of articles whose summary contains the tag,
// case-insensitively.
func (s *Store) ByTag(ctx context.Context, tag string) ([]domain.Projection, error) {
	return s.findProjections(ctx, tagFilter(tag))
}

// ByTagAndCategory conjoins the summary substring match with an exact
// category match.
func (s *Store) ByTagAndCategory(ctx context.Context, tag, category string) ([]domain.Projection, error) {
	return s.findProjections(ctx, tagAndCategoryFilter(tag, category))
}

// All returns every stored article. Used by the relational mirror.
func (s *Store) All(ctx context.Context) ([]domain.Article, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer cursor.Close(ctx)

	var articles []domain.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return articles, nil
}

func (s *Store) findProjections(ctx context.Context, filter bson.M) ([]domain.Projection, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0, "title": 1, "summary": 1, "link_url": 1})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer cursor.Close(ctx)

	results := make([]domain.Projection, 0)
	for cursor.Next(ctx) {
		var projection domain.Projection
		if err := cursor.Decode(&projection); err != nil {
			continue
		}
		results = append(results, projection)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	return results, nil
}

func identityFilter(title, description string) bson.M {
	return bson.M{"title": title, "description": description}
}

func categoryFilter(category string) bson.M {
	return bson.M{"rss_categories": category}
}

func tagFilter(tag string) bson.M {
	return bson.M{"summary": primitive.Regex{Pattern: tag, Options: "i"}}
}

func tagAndCategoryFilter(tag, category string) bson.M {
	return bson.M{
		"summary":        primitive.Regex{Pattern: tag, Options: "i"},
		"rss_categories": category,
	}
}
