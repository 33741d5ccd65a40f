package live

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"

	"github.com/relayvoice/relay-core/core/tools"
)

func toGenAITools(declarations []tools.Declaration) []*genai.Tool {
	if len(declarations) == 0 {
		return nil
	}

	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(declarations))
	for _, declaration := range declarations {
		functionDeclarations = append(functionDeclarations, &genai.FunctionDeclaration{
			Name:        declaration.Name,
			Description: declaration.Description,
			Parameters:  toGenAISchema(declaration.Schema),
		})
	}

	return []*genai.Tool{{FunctionDeclarations: functionDeclarations}}
}

func toGenAISchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}

	converted := &genai.Schema{
		Type:        toGenAIType(schema.Type),
		Description: schema.Description,
		Required:    append([]string(nil), schema.Required...),
	}

	if schema.Properties != nil && schema.Properties.Len() > 0 {
		converted.Properties = map[string]*genai.Schema{}
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			converted.Properties[pair.Key] = toGenAISchema(pair.Value)
		}
	}

	if schema.Items != nil {
		converted.Items = toGenAISchema(schema.Items)
	}

	for _, value := range schema.Enum {
		converted.Enum = append(converted.Enum, fmt.Sprintf("%v", value))
	}

	return converted
}

func toGenAIType(jsonType string) genai.Type {
	switch jsonType {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
