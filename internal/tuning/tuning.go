// Package tuning loads the runtime knobs of a client session from a YAML
// file, validated against an embedded schema and overridden by BROODLINK_*
// environment variables.
package tuning

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"broodlink/internal/speculative"
)

const EnvPrefix = "BROODLINK_"

//go:embed schema.json
var schemaJSON []byte

type Tuning struct {
	LatencyCompensation bool `yaml:"latency_compensation" env:"LATENCY_COMPENSATION"`
	ImmediateEffects    bool `yaml:"immediate_effects" env:"IMMEDIATE_EFFECTS"`

	// Windows overrides the validity window of individual speculative
	// fields, keyed by field name. Unnamed fields keep the latency default.
	Windows map[string]int `yaml:"windows" env:"WINDOWS"`

	FrameRateHz  int    `yaml:"frame_rate_hz" env:"FRAME_RATE_HZ"`
	JournalDir   string `yaml:"journal_dir" env:"JOURNAL_DIR"`
	IndexDB      string `yaml:"index_db" env:"INDEX_DB"`
	ObserverAddr string `yaml:"observer_addr" env:"OBSERVER_ADDR"`
	Capture      string `yaml:"capture" env:"CAPTURE"`
}

func Defaults() Tuning {
	return Tuning{
		LatencyCompensation: true,
		FrameRateHz:         24,
	}
}

// Load reads path over Defaults and then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return t, err
		}
		if err := Decode(raw, &t); err != nil {
			return t, err
		}
	}
	if err := env.ParseWithOptions(&t, env.Options{Prefix: EnvPrefix}); err != nil {
		return t, fmt.Errorf("parse env: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Decode validates raw against the schema and unmarshals it over t.
func Decode(raw []byte, t *Tuning) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("tuning.yaml: %w", err)
	}
	if doc == nil {
		return nil
	}
	if err := validateDoc(doc); err != nil {
		return fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := yaml.Unmarshal(raw, t); err != nil {
		return fmt.Errorf("tuning.yaml: %w", err)
	}
	return nil
}

// Validate checks what the schema cannot: window names must be known fields.
func (t Tuning) Validate() error {
	if t.FrameRateHz <= 0 {
		return fmt.Errorf("tuning: frame_rate_hz must be positive, got %d", t.FrameRateHz)
	}
	_, err := speculative.Windows{}.Override(t.Windows)
	return err
}

// SpeculativeWindows returns the per-field windows for a session whose
// engine reports latencyFrames of command latency.
func (t Tuning) SpeculativeWindows(latencyFrames int) (speculative.Windows, error) {
	return speculative.DefaultWindows(latencyFrames).Override(t.Windows)
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("tuning.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("tuning.schema.json")
	})
	return schema, schemaErr
}

// validateDoc round-trips the YAML document through JSON so the validator
// sees the same value shapes it would for a JSON file.
func validateDoc(doc any) error {
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return s.Validate(v)
}
