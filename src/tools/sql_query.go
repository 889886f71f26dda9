package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/berkincetin/agentic-rag-framework/src/translate"
)

// SQLQueryConfig configures the relational adapter.
type SQLQueryConfig struct {
	MaxRows int
}

// SQLQueryTool answers questions from an allow-listed slice of a relational
// database. The natural-language query is translated into a structured plan
// first; raw SQL never comes from the oracle.
type SQLQueryTool struct {
	cfg        SQLQueryConfig
	pool       *pgxpool.Pool
	translator *translate.SQLTranslator
	logger     zerolog.Logger
}

func NewSQLQueryTool(cfg SQLQueryConfig, pool *pgxpool.Pool, translator *translate.SQLTranslator, logger zerolog.Logger) *SQLQueryTool {
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 100
	}
	return &SQLQueryTool{
		cfg:        cfg,
		pool:       pool,
		translator: translator,
		logger:     logger.With().Str("component", "sql_query").Logger(),
	}
}

func (s *SQLQueryTool) Spec() Spec {
	names := make([]string, 0, len(s.translator.Schema.Tables))
	for _, t := range s.translator.Schema.Tables {
		names = append(names, t.Name)
	}
	return Spec{
		Name: "sql_query",
		Description: fmt.Sprintf(
			"Queries structured records from relational tables: %s. Use for counts, budgets, schedules and other tabular facts.",
			strings.Join(names, ", ")),
	}
}

func (s *SQLQueryTool) Execute(ctx context.Context, req Request) Result {
	name := s.Spec().Name

	plan, err := s.translator.Translate(ctx, req.Query)
	if err != nil {
		kind, _ := translate.KindOf(err)
		switch kind {
		case translate.SchemaViolation:
			return Fail(name, ValidationError, err.Error(), false)
		default:
			return Fail(name, TranslationError, err.Error(), true)
		}
	}

	sql, args := plan.SQL(s.cfg.MaxRows)
	s.logger.Debug().Str("sql", sql).Msg("executing translated query")

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		s.logger.Warn().Err(err).Msg("relational backend query failed")
		return Fail(name, ConnectionError, err.Error(), true)
	}
	defer rows.Close()

	columns := make([]string, 0, len(rows.FieldDescriptions()))
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, string(fd.Name))
	}

	var fragments []Fragment
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return Fail(name, ConnectionError, err.Error(), true)
		}
		pairs := make([]string, 0, len(values))
		for i, v := range values {
			pairs = append(pairs, fmt.Sprintf("%s=%v", columns[i], v))
		}
		fragments = append(fragments, Fragment{
			Source:  "sql:" + plan.Table,
			Content: strings.Join(pairs, ", "),
		})
	}
	if err := rows.Err(); err != nil {
		return Fail(name, ConnectionError, err.Error(), true)
	}

	// Echo the executed statement for transparency and debugging.
	return Succeed(name, fragments, sql)
}

var _ Tool = (*SQLQueryTool)(nil)
