package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every config.yaml validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var subjectCodeRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	err := configValidate.RegisterValidation("subjectcode", func(fl validator.FieldLevel) bool {
		return subjectCodeRe.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// Settings is the parsed .curricula/config.yaml.
type Settings struct {
	LogLevel string    `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	HTTPPort int       `yaml:"http_port" validate:"gte=0,lte=65535"`
	Subjects []Subject `yaml:"subjects" validate:"unique=Code,dive"`
}

// Subject is one catalog entry: a dataset workbook and the code users pick
// it by.
type Subject struct {
	Code    string `yaml:"code" validate:"required,subjectcode"`
	Name    string `yaml:"name"`
	Dataset string `yaml:"dataset" validate:"required"`
	Active  bool   `yaml:"active"`
}

// DefaultSettings is what `curricula init` writes.
func DefaultSettings() *Settings {
	return &Settings{
		LogLevel: "info",
		Subjects: []Subject{{
			Code:    "ejemplo",
			Name:    "Materia de ejemplo",
			Dataset: "datasets/ejemplo.xlsx",
			Active:  true,
		}},
	}
}

// Validate checks field rules. Errors wrap ErrInvalidConfig.
func (s *Settings) Validate() error {
	if err := configValidate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Subject returns the catalog entry with the given code.
func (s *Settings) Subject(code string) (Subject, bool) {
	for _, sub := range s.Subjects {
		if sub.Code == code {
			return sub, true
		}
	}
	return Subject{}, false
}

// DatasetPath resolves a subject's dataset against the project root.
func (sub Subject) DatasetPath(projectRoot string) string {
	if filepath.IsAbs(sub.Dataset) {
		return sub.Dataset
	}
	return filepath.Join(projectRoot, sub.Dataset)
}

// ParseSettings decodes and validates config YAML. Unknown keys are rejected.
func ParseSettings(r io.Reader) (*Settings, error) {
	var s Settings
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSettings reads the config file at path. A missing file yields empty
// settings. CURRICULA_LOG_LEVEL and CURRICULA_HTTP_PORT override the file.
func LoadSettings(path string) (*Settings, error) {
	var s *Settings
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s = &Settings{}
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if s, err = ParseSettings(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyEnv() error {
	if v := os.Getenv("CURRICULA_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv("CURRICULA_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CURRICULA_HTTP_PORT=%q", ErrInvalidConfig, v)
		}
		s.HTTPPort = port
	}
	return s.Validate()
}

// WriteSettings writes s as YAML to path, creating or replacing it.
func WriteSettings(path string, s *Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
