package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema []byte

// schemaNode is the subset of JSON schema used for verification
type schemaNode struct {
	Ref        string                 `json:"$ref"`
	Type       string                 `json:"type"`
	Properties map[string]*schemaNode `json:"properties"`
	Minimum    *float64               `json:"minimum"`
	Maximum    *float64               `json:"maximum"`
	Defs       map[string]*schemaNode `json:"$defs"`
}

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema.
// Every config field must be known to the schema and numeric fields must respect its bounds.
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	return verify(embeddedSchema, cfg)
}

func verify(schemaData []byte, cfg *Config) error {
	var root schemaNode
	if err := json.Unmarshal(schemaData, &root); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	var problems []string
	check(&root, root.Defs, &root, configMap, "", &problems)
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// check walks the config value alongside its schema node and collects problems
func check(root *schemaNode, defs map[string]*schemaNode, node *schemaNode, val any, path string, problems *[]string) {
	node = resolveRef(root, defs, node)
	if node == nil {
		*problems = append(*problems, fmt.Sprintf("%s: unresolved schema reference", path))
		return
	}

	switch v := val.(type) {
	case map[string]any:
		for k, sub := range v {
			p := k
			if path != "" {
				p = path + "." + k
			}
			subNode, ok := node.Properties[k]
			if !ok {
				*problems = append(*problems, fmt.Sprintf("%s: not in schema", p))
				continue
			}
			check(root, defs, subNode, sub, p, problems)
		}
	case float64:
		if node.Minimum != nil && v < *node.Minimum {
			*problems = append(*problems, fmt.Sprintf("%s: %v is below minimum %v", path, v, *node.Minimum))
		}
		if node.Maximum != nil && v > *node.Maximum {
			*problems = append(*problems, fmt.Sprintf("%s: %v is above maximum %v", path, v, *node.Maximum))
		}
	}
}

func resolveRef(root *schemaNode, defs map[string]*schemaNode, node *schemaNode) *schemaNode {
	for node != nil && node.Ref != "" {
		if node.Ref == "#" {
			node = root
			continue
		}
		name := strings.TrimPrefix(node.Ref, "#/$defs/")
		node = defs[name]
	}
	return node
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
