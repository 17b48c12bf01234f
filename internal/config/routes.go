package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend names usable in routing rules.
const (
	BackendOllama    = "ollama"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendLorem     = "lorem"

	// BackendNone as the default disables the fallback, so models no rule
	// matches are rejected.
	BackendNone = "none"
)

// RouteRule sends every model matching the glob pattern Match to Backend.
type RouteRule struct {
	Match   string `yaml:"match"`
	Backend string `yaml:"backend"`
}

// RoutingTable maps requested model names to backends. Rules are tried in
// order; models no rule matches go to Default. Models lists names that are
// advertised by GET /models in addition to what the listing backend reports.
type RoutingTable struct {
	Default string      `yaml:"default"`
	Routes  []RouteRule `yaml:"routes"`
	Models  []string    `yaml:"models"`
}

// DefaultRoutingTable is used when no routes file is configured. Hosted
// backends only get a rule when their API key is set.
func DefaultRoutingTable(cfg Config) RoutingTable {
	table := RoutingTable{Default: BackendOllama}
	if cfg.OpenAIAPIKey != "" {
		table.Routes = append(table.Routes,
			RouteRule{Match: "gpt-*", Backend: BackendOpenAI},
			RouteRule{Match: "o[0-9]*", Backend: BackendOpenAI},
		)
		table.Models = append(table.Models, cfg.OpenAIModel)
	}
	if cfg.AnthropicAPIKey != "" {
		table.Routes = append(table.Routes, RouteRule{Match: "claude-*", Backend: BackendAnthropic})
	}
	table.Routes = append(table.Routes, RouteRule{Match: "lorem-*", Backend: BackendLorem})
	return table
}

// LoadRoutingTable reads cfg.RoutesFile, or falls back to the default table.
func LoadRoutingTable(cfg Config) (RoutingTable, error) {
	if cfg.RoutesFile == "" {
		return DefaultRoutingTable(cfg), nil
	}
	raw, err := os.ReadFile(cfg.RoutesFile)
	if err != nil {
		return RoutingTable{}, fmt.Errorf("read routes file: %w", err)
	}
	return ParseRoutingTable(raw)
}

// ParseRoutingTable decodes a YAML routing table.
func ParseRoutingTable(raw []byte) (RoutingTable, error) {
	var table RoutingTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return RoutingTable{}, fmt.Errorf("parse routes file: %w", err)
	}
	table.Default = strings.TrimSpace(table.Default)
	if table.Default == "" {
		table.Default = BackendOllama
	}
	for i, rule := range table.Routes {
		rule.Match = strings.TrimSpace(rule.Match)
		rule.Backend = strings.TrimSpace(rule.Backend)
		if rule.Match == "" || rule.Backend == "" {
			return RoutingTable{}, errors.New("parse routes file: every route needs match and backend")
		}
		table.Routes[i] = rule
	}
	return table, nil
}
