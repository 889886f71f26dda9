package rag

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/berkincetin/agentic-rag-framework/src/config"
	"github.com/berkincetin/agentic-rag-framework/src/embed"
	"github.com/berkincetin/agentic-rag-framework/src/models"
	"github.com/berkincetin/agentic-rag-framework/src/tools"
	"github.com/berkincetin/agentic-rag-framework/src/translate"
)

// NewBotFromPersona builds a fully wired Bot: oracle, embedder, translators
// and live backend connections for every enabled tool. Backends of disabled
// tools are never dialed.
func NewBotFromPersona(ctx context.Context, p *config.Persona, logger zerolog.Logger) (*Bot, error) {
	oracle, err := models.New(ctx, p.Model.Provider, models.Config{
		Model:       p.Model.Model,
		Temperature: p.Model.Temperature,
		MaxTokens:   p.Model.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("persona %s: %w", p.Name, err)
	}

	var botTools []tools.Tool

	if t := p.Tools.DocumentSearch; t.Enabled {
		var embedder embed.Embedder = embed.DummyEmbedder{}
		if p.Model.Provider != "dummy" {
			embedder = embed.NewOpenAIEmbedder(t.EmbeddingModel)
		}
		botTools = append(botTools, tools.NewDocumentSearch(tools.DocumentSearchConfig{
			BaseURL:        t.URL,
			APIKey:         os.Getenv("QDRANT_API_KEY"),
			Collection:     t.Collection,
			TopK:           t.TopK,
			ScoreThreshold: t.ScoreThreshold,
		}, embedder, logger))
	}

	if t := p.Tools.SQLQuery; t.Enabled {
		dsn := os.Getenv(t.DSNEnv)
		if dsn == "" {
			return nil, fmt.Errorf("persona %s: environment variable %s is empty", p.Name, t.DSNEnv)
		}
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("persona %s: connect postgres: %w", p.Name, err)
		}
		translator := &translate.SQLTranslator{
			Oracle: oracle,
			Schema: translate.SQLSchema{Tables: t.Tables},
			Logger: logger,
		}
		botTools = append(botTools, tools.NewSQLQueryTool(tools.SQLQueryConfig{MaxRows: t.MaxRows}, pool, translator, logger))
	}

	if t := p.Tools.MongoQuery; t.Enabled {
		uri := os.Getenv(t.URIEnv)
		if uri == "" {
			return nil, fmt.Errorf("persona %s: environment variable %s is empty", p.Name, t.URIEnv)
		}
		client, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(uri))
		if err != nil {
			return nil, fmt.Errorf("persona %s: connect mongodb: %w", p.Name, err)
		}
		translator := &translate.MongoTranslator{
			Oracle: oracle,
			Schema: translate.MongoSchema{Collections: t.Collections},
			Logger: logger,
		}
		botTools = append(botTools, tools.NewMongoQueryTool(
			tools.MongoQueryConfig{MaxDocuments: t.MaxDocuments},
			client.Database(t.Database), translator, logger))
	}

	if t := p.Tools.WebSearch; t.Enabled {
		botTools = append(botTools, tools.NewWebSearch(tools.WebSearchConfig{
			SearchDepth:    t.SearchDepth,
			MaxResults:     t.MaxResults,
			IncludeDomains: t.IncludeDomains,
			ExcludeDomains: t.ExcludeDomains,
		}, logger))
	}

	return New(Options{
		Name:         p.Name,
		SystemPrompt: p.SystemPrompt,
		Oracle:       oracle,
		Tools:        botTools,
		MaxTurns:     p.Memory.MaxTurns,
		HistoryTurns: p.Memory.HistoryTurns,
		ToolTimeout:  time.Duration(p.Dispatch.ToolTimeoutSeconds) * time.Second,
		MaxTools:     p.Dispatch.MaxTools,
		Logger:       logger,
	})
}

// NewFrameworkFromDir loads every persona in dir and registers a bot for each.
func NewFrameworkFromDir(ctx context.Context, dir string, logger zerolog.Logger) (*Framework, error) {
	personas, err := config.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	if len(personas) == 0 {
		return nil, fmt.Errorf("no persona files found in %s", dir)
	}

	fw := NewFramework()
	for _, p := range personas {
		bot, err := NewBotFromPersona(ctx, p, logger)
		if err != nil {
			return nil, err
		}
		if err := fw.Register(bot); err != nil {
			return nil, err
		}
		logger.Info().Str("bot", bot.Name()).Strs("tools", bot.ToolNames()).Msg("bot registered")
	}
	return fw, nil
}
