package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/berkincetin/agentic-rag-framework/src/models"
)

// Table is one allow-listed relational table with its visible columns.
type Table struct {
	Name        string   `yaml:"name"`
	Columns     []string `yaml:"columns"`
	Description string   `yaml:"description"`
}

// SQLSchema is the allow-list for a relational tool: the only tables and
// columns a translated query may touch.
type SQLSchema struct {
	Tables []Table
}

func (s SQLSchema) table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Table{}, false
}

func (t Table) hasColumn(name string) bool {
	for _, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// Comparison operators the generated plan may use. Anything else is rejected.
var sqlOperators = map[string]string{
	"=":    "=",
	"!=":   "<>",
	"<>":   "<>",
	">":    ">",
	">=":   ">=",
	"<":    "<",
	"<=":   "<=",
	"in":   "IN",
	"like": "LIKE",
}

// SQLFilter is one WHERE predicate in a translated query.
type SQLFilter struct {
	Column string `json:"column"`
	Op     string `json:"op"`
	Value  any    `json:"value"`
}

// SQLQuery is a validated relational query plan. It is built exclusively by
// SQLTranslator; identifiers inside it are guaranteed allow-listed, values are
// bound as parameters at render time.
type SQLQuery struct {
	Table       string      `json:"table"`
	Columns     []string    `json:"columns"`
	Filters     []SQLFilter `json:"filters"`
	Conjunction string      `json:"conjunction"`
	OrderBy     string      `json:"order_by"`
	Descending  bool        `json:"descending"`
	Limit       int         `json:"limit"`
}

// SQL renders the plan into a parameterized statement with pgx-style
// placeholders. maxRows wins over whatever limit the plan requested.
func (q SQLQuery) SQL(maxRows int) (string, []any) {
	cols := "*"
	if len(q.Columns) > 0 {
		cols = strings.Join(q.Columns, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", cols, q.Table)

	args := make([]any, 0, len(q.Filters))
	if len(q.Filters) > 0 {
		conj := " AND "
		if strings.EqualFold(q.Conjunction, "or") {
			conj = " OR "
		}
		preds := make([]string, 0, len(q.Filters))
		for _, f := range q.Filters {
			op := sqlOperators[strings.ToLower(f.Op)]
			if op == "IN" {
				values, _ := f.Value.([]any)
				holes := make([]string, 0, len(values))
				for _, v := range values {
					args = append(args, v)
					holes = append(holes, fmt.Sprintf("$%d", len(args)))
				}
				preds = append(preds, fmt.Sprintf("%s IN (%s)", f.Column, strings.Join(holes, ", ")))
				continue
			}
			args = append(args, f.Value)
			preds = append(preds, fmt.Sprintf("%s %s $%d", f.Column, op, len(args)))
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(preds, conj))
	}

	if q.OrderBy != "" {
		fmt.Fprintf(&sb, " ORDER BY %s", q.OrderBy)
		if q.Descending {
			sb.WriteString(" DESC")
		}
	}

	limit := q.Limit
	if maxRows > 0 && (limit <= 0 || limit > maxRows) {
		limit = maxRows
	}
	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}

	return sb.String(), args
}

// SQLTranslator turns a natural-language request into a validated SQLQuery.
type SQLTranslator struct {
	Oracle models.Oracle
	Schema SQLSchema
	Logger zerolog.Logger
}

const sqlTranslationPrompt = `You convert natural language questions into structured relational query plans.

Available tables:
%s
Rules:
- Use only the tables and columns listed above.
- Allowed filter operators: =, !=, >, >=, <, <=, in, like.
- "value" holds the literal to compare against; for "in" it is an array.
- "conjunction" is "and" or "or" and applies to all filters.
- Use "like" with %% wildcards for partial text matching.
- Answer the smallest query that satisfies the question.

Respond with JSON of this exact shape:
{"table": "...", "columns": ["..."], "filters": [{"column": "...", "op": "...", "value": ...}], "conjunction": "and", "order_by": "", "descending": false, "limit": 0}

Question: %s`

func (t *SQLTranslator) describeSchema() string {
	var sb strings.Builder
	for _, table := range t.Schema.Tables {
		fmt.Fprintf(&sb, "- %s(%s)", table.Name, strings.Join(table.Columns, ", "))
		if table.Description != "" {
			fmt.Fprintf(&sb, ": %s", table.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Translate asks the oracle for a query plan and validates it against the
// allow-list. The validation gate is not optional: a plan that references
// anything outside the schema is rejected wholesale.
func (t *SQLTranslator) Translate(ctx context.Context, query string) (SQLQuery, error) {
	if len(t.Schema.Tables) == 0 {
		return SQLQuery{}, violation("no tables are allow-listed for this tool")
	}

	prompt := fmt.Sprintf(sqlTranslationPrompt, t.describeSchema(), query)

	var plan SQLQuery
	if err := models.CompleteJSON(ctx, t.Oracle, prompt, &plan); err != nil {
		t.Logger.Warn().Err(err).Msg("sql translation generation failed")
		return SQLQuery{}, generation("%v", err)
	}

	if err := t.Validate(plan); err != nil {
		t.Logger.Warn().Err(err).Str("table", plan.Table).Msg("sql translation rejected")
		return SQLQuery{}, err
	}
	return plan, nil
}

// Validate checks every identifier and operator in the plan against the
// allow-list. Exported so fuzz-style tests can drive it with arbitrary plans.
func (t *SQLTranslator) Validate(plan SQLQuery) error {
	table, ok := t.Schema.table(plan.Table)
	if !ok {
		return violation("table %q is not allow-listed", plan.Table)
	}
	for _, col := range plan.Columns {
		if !table.hasColumn(col) {
			return violation("column %q is not allow-listed on table %q", col, table.Name)
		}
	}
	for _, f := range plan.Filters {
		if !table.hasColumn(f.Column) {
			return violation("filter column %q is not allow-listed on table %q", f.Column, table.Name)
		}
		op, ok := sqlOperators[strings.ToLower(f.Op)]
		if !ok {
			return violation("operator %q is not allowed", f.Op)
		}
		if op == "IN" {
			values, ok := f.Value.([]any)
			if !ok || len(values) == 0 {
				return violation("operator \"in\" requires a non-empty array value on column %q", f.Column)
			}
		}
	}
	if plan.OrderBy != "" && !table.hasColumn(plan.OrderBy) {
		return violation("order_by column %q is not allow-listed on table %q", plan.OrderBy, table.Name)
	}
	return nil
}
