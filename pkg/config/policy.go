// pkg/config/policy.go
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/David-Botos/sheet-cleaner/pkg/cleaner"
)

// Default folders used when the policy file does not name them
const (
	DefaultInputFolder  = "input"
	DefaultOutputFolder = "output"
)

// ErrMalformedPolicy is returned when a policy file cannot be decoded
var ErrMalformedPolicy = errors.New("malformed policy file")

// Mappings is an ordered list of replacement mappings. Files store it as an
// object; the key order of that object is the order replacements are applied in.
type Mappings []cleaner.Replacement

// PolicyFile is the persisted cleaning policy
type PolicyFile struct {
	AllowedAccents      []string `json:"allowed_accents" yaml:"allowed_accents"`
	AllowedCharsPrefix  []string `json:"allowed_chars_prefix" yaml:"allowed_chars_prefix"`
	ReplacementMappings Mappings `json:"replacement_mappings" yaml:"replacement_mappings"`
	InputFolder         string   `json:"input_folder" yaml:"input_folder"`
	OutputFolder        string   `json:"output_folder" yaml:"output_folder"`
	IdentifierToken     string   `json:"identifier_token" yaml:"identifier_token"`
	RepairEncoding      bool     `json:"repair_encoding" yaml:"repair_encoding"`
}

// rawPolicyFile tells a missing key apart from an empty value
type rawPolicyFile struct {
	AllowedAccents      *[]string `json:"allowed_accents" yaml:"allowed_accents"`
	AllowedCharsPrefix  *[]string `json:"allowed_chars_prefix" yaml:"allowed_chars_prefix"`
	ReplacementMappings *Mappings `json:"replacement_mappings" yaml:"replacement_mappings"`
	InputFolder         *string   `json:"input_folder" yaml:"input_folder"`
	OutputFolder        *string   `json:"output_folder" yaml:"output_folder"`
	IdentifierToken     *string   `json:"identifier_token" yaml:"identifier_token"`
	RepairEncoding      *bool     `json:"repair_encoding" yaml:"repair_encoding"`
}

// DefaultPolicyFile returns the built-in policy
func DefaultPolicyFile() *PolicyFile {
	return &PolicyFile{
		AllowedAccents:      cleaner.DefaultAllowedAccents(),
		AllowedCharsPrefix:  cleaner.DefaultAllowedRanges(),
		ReplacementMappings: Mappings(cleaner.DefaultReplacements()),
		InputFolder:         DefaultInputFolder,
		OutputFolder:        DefaultOutputFolder,
		IdentifierToken:     cleaner.DefaultIdentifierToken,
	}
}

// Options converts the file into compiler input
func (p *PolicyFile) Options() cleaner.PolicyOptions {
	return cleaner.PolicyOptions{
		AllowedAccents: p.AllowedAccents,
		AllowedRanges:  p.AllowedCharsPrefix,
		Replacements:   []cleaner.Replacement(p.ReplacementMappings),
		RepairEncoding: p.RepairEncoding,
	}
}

// Compile builds the immutable policy used by the cleaner
func (p *PolicyFile) Compile() (*cleaner.Policy, error) {
	policy, err := cleaner.NewPolicy(p.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to compile cleaning policy: %w", err)
	}
	return policy, nil
}

// ReadPolicyFile reads and decodes a policy file. Keys absent from the file take
// their default value. YAML is used for .yaml and .yml files, JSON otherwise.
func ReadPolicyFile(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var raw rawPolicyFile
	if isYAML(path) {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrMalformedPolicy, path, err)
	}

	pf := raw.merge(DefaultPolicyFile())
	for _, m := range pf.ReplacementMappings {
		if m.From == "" {
			return nil, fmt.Errorf("%w %s: %v", ErrMalformedPolicy, path, cleaner.ErrEmptyReplacementKey)
		}
	}
	return pf, nil
}

// LoadPolicyFile reads a policy file and falls back to the defaults in full when
// the file is missing or cannot be decoded. It never fails.
func LoadPolicyFile(path string, logger *zap.Logger) *PolicyFile {
	if path == "" {
		logger.Info("No policy file configured, using defaults")
		return DefaultPolicyFile()
	}

	pf, err := ReadPolicyFile(path)
	switch {
	case err == nil:
		logger.Info("Loaded policy file", zap.String("path", path))
		return pf
	case errors.Is(err, os.ErrNotExist):
		logger.Info("Policy file not found, using defaults", zap.String("path", path))
	default:
		logger.Error("Failed to load policy file, using defaults",
			zap.String("path", path),
			zap.Error(err))
	}
	return DefaultPolicyFile()
}

// LoadPolicy loads a policy file and compiles it. A file that does not compile
// is treated like a malformed one: the error is logged and the defaults are used.
func LoadPolicy(path string, logger *zap.Logger) (*PolicyFile, *cleaner.Policy) {
	pf := LoadPolicyFile(path, logger)

	policy, err := pf.Compile()
	if err != nil {
		logger.Error("Invalid cleaning policy, using defaults",
			zap.String("path", path),
			zap.Error(err))
		pf = DefaultPolicyFile()
		policy = cleaner.DefaultPolicy()
	}

	return pf, policy
}

// EncodePolicyFile writes the policy as indented JSON, or YAML when asYAML is set.
// Replacement mappings keep their order.
func EncodePolicyFile(w io.Writer, pf *PolicyFile, asYAML bool) error {
	if pf == nil {
		return errors.New("policy file cannot be nil")
	}

	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(pf); err != nil {
			return fmt.Errorf("failed to encode policy file: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode policy file: %w", err)
		}
		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(pf); err != nil {
		return fmt.Errorf("failed to encode policy file: %w", err)
	}
	return nil
}

// SavePolicyFile writes the policy to path, creating parent directories as needed
func SavePolicyFile(path string, pf *PolicyFile) error {
	var buf bytes.Buffer
	if err := EncodePolicyFile(&buf, pf, isYAML(path)); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create policy directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write policy file: %w", err)
	}
	return nil
}

func (r *rawPolicyFile) merge(pf *PolicyFile) *PolicyFile {
	if r.AllowedAccents != nil {
		pf.AllowedAccents = *r.AllowedAccents
	}
	if r.AllowedCharsPrefix != nil {
		pf.AllowedCharsPrefix = *r.AllowedCharsPrefix
	}
	if r.ReplacementMappings != nil {
		pf.ReplacementMappings = *r.ReplacementMappings
	}
	if r.InputFolder != nil {
		pf.InputFolder = *r.InputFolder
	}
	if r.OutputFolder != nil {
		pf.OutputFolder = *r.OutputFolder
	}
	if r.IdentifierToken != nil && *r.IdentifierToken != "" {
		pf.IdentifierToken = *r.IdentifierToken
	}
	if r.RepairEncoding != nil {
		pf.RepairEncoding = *r.RepairEncoding
	}
	return pf
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// UnmarshalJSON decodes an object while keeping its key order.
// A repeated key keeps its first position and its last value.
func (m *Mappings) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("replacement_mappings must be an object")
	}

	out := Mappings{}
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected replacement key %v", keyTok)
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("replacement for %q must be a string: %w", key, err)
		}
		out = out.set(index, key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = out
	return nil
}

// MarshalJSON encodes the mappings as an object in list order
func (m Mappings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, r.From); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, r.To); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a mapping node while keeping its key order
func (m *Mappings) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*m = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: replacement_mappings must be a mapping", node.Line)
	}

	out := Mappings{}
	index := make(map[string]int)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key, value string
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("replacement for %q must be a string: %w", key, err)
		}
		out = out.set(index, key, value)
	}

	*m = out
	return nil
}

// MarshalYAML encodes the mappings as a mapping node in list order
func (m Mappings) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, r := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.From},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.To},
		)
	}
	return node, nil
}

func (m Mappings) set(index map[string]int, key, value string) Mappings {
	if i, ok := index[key]; ok {
		m[i].To = value
		return m
	}
	index[key] = len(m)
	return append(m, cleaner.Replacement{From: key, To: value})
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}
