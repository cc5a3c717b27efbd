package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/sqltpl/engine"
	"gopkg.in/yaml.v3"
)

// ParseArgs decodes a YAML or JSON list into template arguments. Mappings
// become engine.Assoc in document order, and a string equal to skipToken
// becomes the skip marker.
func ParseArgs(src, skipToken string) ([]any, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, errors.New("parse args: expected a list")
	}

	args := make([]any, 0, len(root.Content))
	for _, n := range root.Content {
		v, err := convertNode(n, skipToken)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func convertNode(n *yaml.Node, skipToken string) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return convertNode(n.Alias, skipToken)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("parse args: line %d: %w", n.Line, err)
		}
		if s, ok := v.(string); ok && skipToken != "" && s == skipToken {
			return engine.Skip(), nil
		}
		return v, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := convertNode(c, skipToken)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		assoc := make(engine.Assoc, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, err := mappingKey(n.Content[i])
			if err != nil {
				return nil, err
			}
			v, err := convertNode(n.Content[i+1], skipToken)
			if err != nil {
				return nil, err
			}
			assoc = append(assoc, engine.Pair{Key: key, Value: v})
		}
		return assoc, nil
	}
	return nil, fmt.Errorf("parse args: line %d: unsupported node", n.Line)
}

// mappingKey keeps integer keys as integers so they render positionally.
func mappingKey(n *yaml.Node) (any, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("parse args: line %d: mapping keys must be scalars", n.Line)
	}
	if n.Tag == "!!int" {
		var i int64
		if err := n.Decode(&i); err == nil {
			return i, nil
		}
	}
	return n.Value, nil
}
