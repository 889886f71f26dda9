// Package config loads persona definitions from YAML files. A persona is one
// bot: its prompt, its model settings and the tools it may use. Everything is
// validated at load time so a broken file fails startup, not the first query.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/berkincetin/agentic-rag-framework/src/translate"
)

// ValidationError points at the exact field of the file that is wrong.
type ValidationError struct {
	File  string
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Msg)
}

func invalid(file, field, format string, args ...any) error {
	return &ValidationError{File: file, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ModelConfig selects and tunes the completion oracle.
type ModelConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// MemoryConfig bounds the per-session conversation log.
type MemoryConfig struct {
	MaxTurns     int `yaml:"max_turns"`
	HistoryTurns int `yaml:"history_turns"`
}

// DispatchConfig bounds tool execution per cycle.
type DispatchConfig struct {
	ToolTimeoutSeconds int `yaml:"tool_timeout_seconds"`
	MaxTools           int `yaml:"max_tools"`
}

// DocumentSearchConfig binds the vector search tool to one collection.
type DocumentSearchConfig struct {
	Enabled        bool    `yaml:"enabled"`
	URL            string  `yaml:"url"`
	Collection     string  `yaml:"collection"`
	EmbeddingModel string  `yaml:"embedding_model"`
	TopK           int     `yaml:"top_k"`
	ScoreThreshold float64 `yaml:"score_threshold"`
}

// SQLQueryConfig binds the relational tool to an allow-listed schema slice.
// The DSN comes from the named environment variable, never from the file.
type SQLQueryConfig struct {
	Enabled bool              `yaml:"enabled"`
	DSNEnv  string            `yaml:"dsn_env"`
	MaxRows int               `yaml:"max_rows"`
	Tables  []translate.Table `yaml:"tables"`
}

// MongoQueryConfig binds the document-store tool to allow-listed collections.
type MongoQueryConfig struct {
	Enabled      bool                   `yaml:"enabled"`
	URIEnv       string                 `yaml:"uri_env"`
	Database     string                 `yaml:"database"`
	MaxDocuments int                    `yaml:"max_documents"`
	Collections  []translate.Collection `yaml:"collections"`
}

// WebSearchConfig tunes the web search tool.
type WebSearchConfig struct {
	Enabled        bool     `yaml:"enabled"`
	SearchDepth    string   `yaml:"search_depth"`
	MaxResults     int      `yaml:"max_results"`
	IncludeDomains []string `yaml:"include_domains"`
	ExcludeDomains []string `yaml:"exclude_domains"`
}

// ToolsConfig enables and configures the tool families for one persona.
type ToolsConfig struct {
	DocumentSearch DocumentSearchConfig `yaml:"document_search"`
	SQLQuery       SQLQueryConfig       `yaml:"sql_query"`
	MongoQuery     MongoQueryConfig     `yaml:"mongo_query"`
	WebSearch      WebSearchConfig      `yaml:"web_search"`
}

// Persona is one fully validated bot definition.
type Persona struct {
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	SystemPrompt string         `yaml:"system_prompt"`
	Model        ModelConfig    `yaml:"model"`
	Memory       MemoryConfig   `yaml:"memory"`
	Dispatch     DispatchConfig `yaml:"dispatch"`
	Tools        ToolsConfig    `yaml:"tools"`
}

// EnabledTools lists the enabled tool families in their fixed order.
func (p *Persona) EnabledTools() []string {
	var names []string
	if p.Tools.DocumentSearch.Enabled {
		names = append(names, "document_search")
	}
	if p.Tools.SQLQuery.Enabled {
		names = append(names, "sql_query")
	}
	if p.Tools.MongoQuery.Enabled {
		names = append(names, "mongo_query")
	}
	if p.Tools.WebSearch.Enabled {
		names = append(names, "web_search")
	}
	return names
}

var knownProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"ollama":    true,
	"gemini":    true,
	"dummy":     true,
}

// LoadFile reads and validates a single persona file.
func LoadFile(path string) (*Persona, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}

	var p Persona
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true) // typos in keys fail loudly
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := p.validate(filepath.Base(path)); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadDir loads every .yaml/.yml file in dir, sorted by filename. One broken
// file fails the whole load.
func LoadDir(dir string) ([]*Persona, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read persona directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	seen := make(map[string]string)
	personas := make([]*Persona, 0, len(paths))
	for _, path := range paths {
		p, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(p.Name)
		if prev, dup := seen[key]; dup {
			return nil, invalid(filepath.Base(path), "name", "persona %q already defined in %s", p.Name, prev)
		}
		seen[key] = filepath.Base(path)
		personas = append(personas, p)
	}
	return personas, nil
}

func (p *Persona) validate(file string) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid(file, "name", "persona name is required")
	}
	if strings.TrimSpace(p.SystemPrompt) == "" {
		return invalid(file, "system_prompt", "system prompt is required")
	}

	provider := strings.ToLower(strings.TrimSpace(p.Model.Provider))
	if !knownProviders[provider] {
		return invalid(file, "model.provider", "unknown provider %q", p.Model.Provider)
	}
	if p.Model.Temperature < 0 || p.Model.Temperature > 2 {
		return invalid(file, "model.temperature", "must be between 0 and 2, got %v", p.Model.Temperature)
	}
	if p.Model.MaxTokens < 0 {
		return invalid(file, "model.max_tokens", "must not be negative")
	}

	if p.Memory.MaxTurns < 0 || p.Memory.HistoryTurns < 0 {
		return invalid(file, "memory", "turn counts must not be negative")
	}
	if p.Dispatch.ToolTimeoutSeconds < 0 {
		return invalid(file, "dispatch.tool_timeout_seconds", "must not be negative")
	}

	if len(p.EnabledTools()) == 0 {
		return invalid(file, "tools", "at least one tool must be enabled")
	}

	if t := p.Tools.DocumentSearch; t.Enabled {
		if strings.TrimSpace(t.Collection) == "" {
			return invalid(file, "tools.document_search.collection", "collection is required")
		}
		if t.TopK < 0 {
			return invalid(file, "tools.document_search.top_k", "must not be negative")
		}
	}

	if t := p.Tools.SQLQuery; t.Enabled {
		if strings.TrimSpace(t.DSNEnv) == "" {
			return invalid(file, "tools.sql_query.dsn_env", "dsn_env is required")
		}
		if len(t.Tables) == 0 {
			return invalid(file, "tools.sql_query.tables", "at least one allow-listed table is required")
		}
		for i, table := range t.Tables {
			field := fmt.Sprintf("tools.sql_query.tables[%d]", i)
			if strings.TrimSpace(table.Name) == "" {
				return invalid(file, field+".name", "table name is required")
			}
			if len(table.Columns) == 0 {
				return invalid(file, field+".columns", "table %q needs at least one column", table.Name)
			}
		}
	}

	if t := p.Tools.MongoQuery; t.Enabled {
		if strings.TrimSpace(t.URIEnv) == "" {
			return invalid(file, "tools.mongo_query.uri_env", "uri_env is required")
		}
		if strings.TrimSpace(t.Database) == "" {
			return invalid(file, "tools.mongo_query.database", "database is required")
		}
		if len(t.Collections) == 0 {
			return invalid(file, "tools.mongo_query.collections", "at least one allow-listed collection is required")
		}
		for i, coll := range t.Collections {
			field := fmt.Sprintf("tools.mongo_query.collections[%d]", i)
			if strings.TrimSpace(coll.Name) == "" {
				return invalid(file, field+".name", "collection name is required")
			}
			if len(coll.Fields) == 0 {
				return invalid(file, field+".fields", "collection %q needs at least one field", coll.Name)
			}
		}
	}

	if t := p.Tools.WebSearch; t.Enabled {
		switch strings.ToLower(t.SearchDepth) {
		case "", "basic", "advanced":
		default:
			return invalid(file, "tools.web_search.search_depth", "must be basic or advanced, got %q", t.SearchDepth)
		}
		if t.MaxResults < 0 {
			return invalid(file, "tools.web_search.max_results", "must not be negative")
		}
	}

	return nil
}
