package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/avoronov/smb-tagger/internal/common"
	"github.com/avoronov/smb-tagger/internal/model"
)

// JSONSchema returns the JSON-Schema constraint for a classification
// schema as a generic map. It is sent to the model as the tool's parameter
// schema and used locally to validate the returned arguments.
func JSONSchema(s model.SchemaID) map[string]any {
	switch s {
	case model.SchemaPaymentTypes:
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"payments_to_suppliers": map[string]any{
					"type":        "boolean",
					"description": "True, если есть платежи поставщикам (оплата по счету, за товары/услуги, за материалы)",
				},
				"payments_salary_related": map[string]any{
					"type":        "boolean",
					"description": "True, если есть выплаты, похожие на зарплату (перечисление зп, аванс)",
				},
				"payments_tax": map[string]any{
					"type":        "boolean",
					"description": "True, если есть налоговые платежи (оплата налога, пени ФНС, взнос ПФР)",
				},
			},
		}
	case model.SchemaCashActivity:
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"cash_activity_level": map[string]any{
					"type":        "string",
					"enum":        []string{"high", "low"},
					"description": `"high", если есть частые/крупные операции с наличными; "low", если преобладают безналичные расчеты.`,
				},
			},
			"required": []string{"cash_activity_level"},
		}
	case model.SchemaForeignTrade:
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"has_ved_signs": map[string]any{
					"type":        "boolean",
					"description": "True, если найдены признаки ВЭД, иначе false.",
				},
			},
		}
	default:
		return nil
	}
}

// validateAgainstSchema validates data against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal arguments: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrSchemaValidation, err)
	}
	return nil
}

// Decode validates raw tool arguments against the schema and decodes them
// into the matching typed classification. Absent optional fields keep
// their documented false defaults.
func Decode(s model.SchemaID, raw []byte) (model.Classification, error) {
	if err := validateAgainstSchema(JSONSchema(s), raw); err != nil {
		return nil, err
	}

	switch s {
	case model.SchemaPaymentTypes:
		var out model.PaymentTypes
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s, err)
		}
		return out, nil
	case model.SchemaCashActivity:
		var out model.CashActivity
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s, err)
		}
		return out, nil
	case model.SchemaForeignTrade:
		var out model.ForeignTradeSigns
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown schema id %d", s)
	}
}
