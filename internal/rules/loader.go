package rules

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML rules file. Fields absent from the file keep the
// built-in defaults; a present bounds list replaces the default table.
// Unknown fields fail immediately.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML rules on top of DefaultRules
func Parse(data []byte) (*Rules, error) {
	r := DefaultRules()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}

	if err := Validate(&r); err != nil {
		return nil, err
	}

	return &r, nil
}

// Hash returns the SHA-256 of the canonical JSON form.
// Struct fields and the ordered bounds slice keep the encoding deterministic.
func Hash(r *Rules) (string, error) {
	jsonBytes, err := json.Marshal(r)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
