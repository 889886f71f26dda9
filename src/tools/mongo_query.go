package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/berkincetin/agentic-rag-framework/src/translate"
)

// MongoQueryConfig configures the document-store adapter.
type MongoQueryConfig struct {
	MaxDocuments int
}

// MongoQueryTool answers questions from allow-listed MongoDB collections.
type MongoQueryTool struct {
	cfg        MongoQueryConfig
	db         *mongo.Database
	translator *translate.MongoTranslator
	logger     zerolog.Logger
}

func NewMongoQueryTool(cfg MongoQueryConfig, db *mongo.Database, translator *translate.MongoTranslator, logger zerolog.Logger) *MongoQueryTool {
	if cfg.MaxDocuments <= 0 {
		cfg.MaxDocuments = 10
	}
	return &MongoQueryTool{
		cfg:        cfg,
		db:         db,
		translator: translator,
		logger:     logger.With().Str("component", "mongo_query").Logger(),
	}
}

func (m *MongoQueryTool) Spec() Spec {
	return Spec{
		Name: "mongo_query",
		Description: "Queries document collections for structured records. " +
			"Use for catalog-style lookups stored as documents rather than tables.",
	}
}

func (m *MongoQueryTool) Execute(ctx context.Context, req Request) Result {
	name := m.Spec().Name

	plan, err := m.translator.Translate(ctx, req.Query)
	if err != nil {
		kind, _ := translate.KindOf(err)
		switch kind {
		case translate.SchemaViolation:
			return Fail(name, ValidationError, err.Error(), false)
		default:
			return Fail(name, TranslationError, err.Error(), true)
		}
	}

	limit := plan.Limit
	if limit <= 0 || limit > m.cfg.MaxDocuments {
		limit = m.cfg.MaxDocuments
	}

	filter := bson.M(plan.Filter)
	if filter == nil {
		filter = bson.M{}
	}

	m.logger.Debug().Str("collection", plan.Collection).Str("filter", plan.FilterJSON()).Msg("executing translated filter")

	cursor, err := m.db.Collection(plan.Collection).Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		m.logger.Warn().Err(err).Str("collection", plan.Collection).Msg("document backend query failed")
		return Fail(name, ConnectionError, err.Error(), true)
	}
	defer cursor.Close(ctx)

	var fragments []Fragment
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return Fail(name, ConnectionError, err.Error(), true)
		}
		delete(doc, "_id")
		rendered, err := json.Marshal(doc)
		if err != nil {
			continue
		}
		fragments = append(fragments, Fragment{
			Source:  "mongo:" + plan.Collection,
			Content: string(rendered),
		})
	}
	if err := cursor.Err(); err != nil {
		return Fail(name, ConnectionError, err.Error(), true)
	}

	echo := fmt.Sprintf("db.%s.find(%s).limit(%d)", plan.Collection, plan.FilterJSON(), limit)
	return Succeed(name, fragments, echo)
}

var _ Tool = (*MongoQueryTool)(nil)
