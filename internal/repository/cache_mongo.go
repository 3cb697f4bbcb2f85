package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
)

const analysesCollection = "analyses"

type analysisDocument struct {
	Hash   string        `bson:"_id"`
	Result domain.Result `bson:"result"`
}

type MongoCache struct {
	mongo *mongo.Database
}

func NewMongoCache(db *mongo.Database) *MongoCache {
	return &MongoCache{mongo: db}
}

func (m *MongoCache) Lookup(ctx context.Context, hash string) (domain.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc analysisDocument
	err := m.mongo.Collection(analysesCollection).FindOne(ctx, bson.M{"_id": hash}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Result{}, errs.ErrCacheMiss
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("mongo find analysis: %w", err)
	}
	return doc.Result, nil
}

func (m *MongoCache) Store(ctx context.Context, hash string, result domain.Result) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := analysisDocument{Hash: hash, Result: result}
	_, err := m.mongo.Collection(analysesCollection).ReplaceOne(ctx, bson.M{"_id": hash}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo upsert analysis: %w", err)
	}
	return nil
}

func (m *MongoCache) Close(ctx context.Context) error {
	return nil
}
