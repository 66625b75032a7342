package template

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tags curtas do CloudFormation convertidas para a forma longa {"Fn::X": valor}.
var intrinsicTags = map[string]string{
	"!Ref":         "Ref",
	"!Condition":   "Condition",
	"!Sub":         "Fn::Sub",
	"!GetAtt":      "Fn::GetAtt",
	"!GetAZs":      "Fn::GetAZs",
	"!ImportValue": "Fn::ImportValue",
	"!Base64":      "Fn::Base64",
	"!Join":        "Fn::Join",
	"!Select":      "Fn::Select",
	"!Split":       "Fn::Split",
	"!FindInMap":   "Fn::FindInMap",
	"!If":          "Fn::If",
	"!Equals":      "Fn::Equals",
	"!Not":         "Fn::Not",
	"!And":         "Fn::And",
	"!Or":          "Fn::Or",
	"!Cidr":        "Fn::Cidr",
}

// Decode converte o conteúdo do template (YAML ou JSON) na árvore genérica
// map[string]any, trocando as tags intrínsecas por marcadores {"Fn::X": ...}.
func Decode(data []byte) (map[string]any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("YAML malformado: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("template vazio")
	}

	decoded, err := decodeNode(root.Content[0])
	if err != nil {
		return nil, err
	}
	tree, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("raiz do template deve ser um mapa")
	}
	return tree, nil
}

func decodeNode(node *yaml.Node) (any, error) {
	var (
		value any
		err   error
	)

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return decodeNode(node.Content[0])

	case yaml.AliasNode:
		return decodeNode(node.Alias)

	case yaml.MappingNode:
		m := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			v, err := decodeNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		value = m

	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := decodeNode(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		value = list

	case yaml.ScalarNode:
		if _, custom := intrinsicTags[node.Tag]; custom {
			value = node.Value
		} else if err = node.Decode(&value); err != nil {
			return nil, fmt.Errorf("linha %d: %w", node.Line, err)
		}
	}

	if fn, ok := intrinsicTags[node.Tag]; ok {
		return map[string]any{fn: value}, nil
	}
	return value, nil
}
