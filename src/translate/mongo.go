package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/berkincetin/agentic-rag-framework/src/models"
)

// Collection is one allow-listed document collection with its visible fields.
type Collection struct {
	Name        string   `yaml:"name"`
	Fields      []string `yaml:"fields"`
	Description string   `yaml:"description"`
}

// MongoSchema is the allow-list for a document-store tool.
type MongoSchema struct {
	Collections []Collection
}

func (s MongoSchema) collection(name string) (Collection, bool) {
	for _, c := range s.Collections {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Collection{}, false
}

func (c Collection) hasField(name string) bool {
	for _, f := range c.Fields {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// Operators a generated filter may use. $where and friends are conspicuously
// absent: they execute code server-side.
var mongoOperators = map[string]bool{
	"$eq":    true,
	"$ne":    true,
	"$gt":    true,
	"$gte":   true,
	"$lt":    true,
	"$lte":   true,
	"$in":    true,
	"$regex": true,
	"$and":   true,
	"$or":    true,
}

// MongoQuery is a validated document filter, built only by MongoTranslator.
type MongoQuery struct {
	Collection string         `json:"collection"`
	Filter     map[string]any `json:"filter"`
	Limit      int            `json:"limit"`
}

// FilterJSON renders the filter for result transparency.
func (q MongoQuery) FilterJSON() string {
	data, err := json.Marshal(q.Filter)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// MongoTranslator turns a natural-language request into a validated MongoQuery.
type MongoTranslator struct {
	Oracle models.Oracle
	Schema MongoSchema
	Logger zerolog.Logger
}

const mongoTranslationPrompt = `You convert natural language questions into MongoDB find filters.

Available collections:
%s
Rules:
- Use only the collections and fields listed above.
- Allowed operators: $eq, $ne, $gt, $gte, $lt, $lte, $in, $regex, $and, $or.
- For partial matching use $regex with case-insensitive patterns.
- Keep the filter as small as possible.

Respond with JSON of this exact shape:
{"collection": "...", "filter": {...}, "limit": 0}

Question: %s`

func (t *MongoTranslator) describeSchema() string {
	var sb strings.Builder
	for _, c := range t.Schema.Collections {
		fmt.Fprintf(&sb, "- %s(%s)", c.Name, strings.Join(c.Fields, ", "))
		if c.Description != "" {
			fmt.Fprintf(&sb, ": %s", c.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Translate asks the oracle for a filter and validates it against the
// allow-list before it can reach a backend.
func (t *MongoTranslator) Translate(ctx context.Context, query string) (MongoQuery, error) {
	if len(t.Schema.Collections) == 0 {
		return MongoQuery{}, violation("no collections are allow-listed for this tool")
	}

	prompt := fmt.Sprintf(mongoTranslationPrompt, t.describeSchema(), query)

	var plan MongoQuery
	if err := models.CompleteJSON(ctx, t.Oracle, prompt, &plan); err != nil {
		t.Logger.Warn().Err(err).Msg("mongo translation generation failed")
		return MongoQuery{}, generation("%v", err)
	}

	if err := t.Validate(plan); err != nil {
		t.Logger.Warn().Err(err).Str("collection", plan.Collection).Msg("mongo translation rejected")
		return MongoQuery{}, err
	}
	return plan, nil
}

// Validate walks the whole filter tree. Every $-prefixed key must be an
// allowed operator and every other key an allow-listed field of the target
// collection.
func (t *MongoTranslator) Validate(plan MongoQuery) error {
	coll, ok := t.Schema.collection(plan.Collection)
	if !ok {
		return violation("collection %q is not allow-listed", plan.Collection)
	}
	return validateFilter(coll, plan.Filter)
}

func validateFilter(coll Collection, filter map[string]any) error {
	for key, value := range filter {
		if strings.HasPrefix(key, "$") {
			if !mongoOperators[key] {
				return violation("operator %q is not allowed", key)
			}
			// $and / $or carry arrays of sub-filters.
			if key == "$and" || key == "$or" {
				subs, ok := value.([]any)
				if !ok {
					return violation("operator %q must carry an array of filters", key)
				}
				for _, sub := range subs {
					subFilter, ok := sub.(map[string]any)
					if !ok {
						return violation("operator %q contains a non-object clause", key)
					}
					if err := validateFilter(coll, subFilter); err != nil {
						return err
					}
				}
			}
			continue
		}
		if !coll.hasField(key) {
			return violation("field %q is not allow-listed on collection %q", key, coll.Name)
		}
		// Nested operator objects like {"budget": {"$gt": 10}}.
		if nested, ok := value.(map[string]any); ok {
			for op := range nested {
				if strings.HasPrefix(op, "$") && !mongoOperators[op] {
					return violation("operator %q is not allowed", op)
				}
			}
		}
	}
	return nil
}
