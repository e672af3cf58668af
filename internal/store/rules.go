// Package store loads the categorization rule table and persists ledger
// snapshots.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
)

// Rule file sections.
const (
	sectionMerchants           = "merchants"
	sectionDescriptionKeywords = "description_keywords"
)

// DefaultRuleFiles are looked up when no rule file is configured.
var DefaultRuleFiles = []string{
	"classification_rules.json",
	"classification_rules.yaml",
	"classification_rules.yml",
}

// RuleStore reads a rule table from a YAML or JSON file. Declaration order
// within each section is preserved.
type RuleStore struct {
	FilePath string
	logger   logging.Logger
}

// NewRuleStore creates a store for the rule file at filePath. An empty path
// searches DefaultRuleFiles and falls back to an empty table.
func NewRuleStore(filePath string, logger logging.Logger) *RuleStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &RuleStore{FilePath: filePath, logger: logger}
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if info, err := os.Stat(filename); err == nil && !info.IsDir() {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("data", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "finledger", filename))
	}

	for _, location := range locations {
		if info, err := os.Stat(location); err == nil && !info.IsDir() {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadRules implements categorizer.RuleStoreInterface. A configured file
// that cannot be found or read is an error.
func (s *RuleStore) LoadRules() (models.RuleTable, error) {
	path, err := s.resolve()
	if err != nil {
		return models.RuleTable{}, err
	}
	if path == "" {
		s.logger.Warn("No rule file found, categorization rules are empty")
		return models.RuleTable{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.RuleTable{}, fmt.Errorf("error reading rule file: %w", err)
	}

	table, err := DecodeRuleTable(data)
	if err != nil {
		return models.RuleTable{}, fmt.Errorf("error parsing rule file %s: %w", path, err)
	}

	s.logger.Debug("Loaded rule table",
		logging.F(logging.FieldFile, path),
		logging.F("merchant_rules", len(table.Merchants)),
		logging.F("description_rules", len(table.DescriptionKeywords)))
	return table, nil
}

func (s *RuleStore) resolve() (string, error) {
	if s.FilePath != "" {
		path, err := FindConfigFile(s.FilePath)
		if err != nil {
			return "", fmt.Errorf("rule file %s: %w", s.FilePath, err)
		}
		return path, nil
	}
	for _, name := range DefaultRuleFiles {
		if path, err := FindConfigFile(name); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// DecodeRuleTable parses a rule document of the form
//
//	merchants:
//	  <keyword>: {category: <c>, subcategory: <s>}
//	description_keywords:
//	  <keyword>: {category: <c>, subcategory: <s>}
//
// JSON documents with the same shape are accepted. Unknown sections are
// ignored.
func DecodeRuleTable(data []byte) (models.RuleTable, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.RuleTable{}, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return models.RuleTable{}, nil
	}

	root := doc.Content[0]
	if isNull(root) {
		return models.RuleTable{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return models.RuleTable{}, errors.New("rule document must be a mapping")
	}

	var table models.RuleTable
	for i := 0; i+1 < len(root.Content); i += 2 {
		section, value := root.Content[i].Value, root.Content[i+1]
		var err error
		switch section {
		case sectionMerchants:
			table.Merchants, err = decodeKeywordRules(section, value)
		case sectionDescriptionKeywords:
			table.DescriptionKeywords, err = decodeKeywordRules(section, value)
		}
		if err != nil {
			return models.RuleTable{}, err
		}
	}
	return table, nil
}

func decodeKeywordRules(section string, node *yaml.Node) ([]models.KeywordRule, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: expected a mapping of keyword to category (line %d)", section, node.Line)
	}

	rules := make([]models.KeywordRule, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		var assignment models.CategoryAssignment
		if err := node.Content[i+1].Decode(&assignment); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", section, keyNode.Value, err)
		}
		rules = append(rules, models.NewKeywordRule(keyNode.Value, assignment.Category, assignment.Subcategory))
	}
	return rules, nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
