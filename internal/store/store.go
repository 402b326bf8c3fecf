// Package store loads and saves the keyword rule file.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/parsererror"
)

// DefaultRulesFile is the rule file name looked up when none is configured.
const DefaultRulesFile = "categories.yaml"

// CategoryStore manages loading and saving of the keyword rule set.
type CategoryStore struct {
	RulesFile string
	logger    logging.Logger
	validate  *validator.Validate
}

// NewCategoryStore creates a new store for the rule file.
func NewCategoryStore(rulesFile string, logger logging.Logger) *CategoryStore {
	if rulesFile == "" {
		rulesFile = DefaultRulesFile
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &CategoryStore{
		RulesFile: rulesFile,
		logger:    logger,
		validate:  newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("keyword", validateKeyword)
	_ = v.RegisterValidation("category_name", validateCategoryName)
	return v
}

func validateKeyword(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateCategoryName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	return name != "" && len(name) <= 64 && !strings.Contains(name, ">") &&
		!strings.EqualFold(name, models.CategoryUncategorized)
}

// FindConfigFile looks for a configuration file in standard locations
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join(".fintrack", filename),
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".fintrack", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// Load reads and validates the rule file. A missing file yields an empty
// rule set.
func (s *CategoryStore) Load() (RuleSet, error) {
	path, err := s.FindConfigFile(s.RulesFile)
	if err != nil {
		s.logger.Warn("Rule file not found, starting with an empty rule set",
			logging.F(logging.FieldFile, s.RulesFile))
		return RuleSet{}, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return RuleSet{}, fmt.Errorf("error reading rule file: %w", err)
	}

	rules, err := Decode(data)
	if err != nil {
		return RuleSet{}, &parsererror.ValidationError{Source: path, Reason: err.Error()}
	}
	if err := s.Validate(rules); err != nil {
		return RuleSet{}, &parsererror.ValidationError{Source: path, Reason: err.Error()}
	}

	s.logger.Debug("Loaded rule set",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(rules.Categories)))
	return rules, nil
}

// Decode parses a YAML rule set, rejecting unknown fields.
func Decode(data []byte) (RuleSet, error) {
	var rules RuleSet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
		return RuleSet{}, fmt.Errorf("could not parse rule file: %w", err)
	}
	return rules, nil
}

// Validate checks field constraints and the tree shape.
func (s *CategoryStore) Validate(rules RuleSet) error {
	if err := s.validate.Struct(rules); err != nil {
		return err
	}
	return rules.Forest().Validate()
}

// Save validates and writes the rule set, replacing the file.
func (s *CategoryStore) Save(rules RuleSet) error {
	if err := s.Validate(rules); err != nil {
		return &parsererror.ValidationError{Source: s.RulesFile, Reason: err.Error()}
	}

	path := s.RulesFile
	if found, err := s.FindConfigFile(s.RulesFile); err == nil {
		path = found
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := yaml.Marshal(rules)
	if err != nil {
		return fmt.Errorf("error marshaling rule set: %w", err)
	}
	if err := os.WriteFile(path, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing rule file: %w", err)
	}

	s.logger.Info("Saved rule set",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(rules.Categories)))
	return nil
}
