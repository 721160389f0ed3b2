package sync

import (
	"encoding/json"
	"fmt"

	"github.com/Artexxx/HR-Sync-Hub/internal/dto"
)

// ApplyMappings применяет правила тенанта к записи-словарю: значение
// sourceField переносится в targetField, поля вне правил проходят без
// изменений. Правило с неизвестным sourceField просто пропускается.
func ApplyMappings(record map[string]any, rules []dto.FieldMapping) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}

	for _, rule := range rules {
		if rule.SourceField == "" || rule.TargetField == "" || rule.SourceField == rule.TargetField {
			continue
		}
		v, ok := out[rule.SourceField]
		if !ok {
			continue
		}
		delete(out, rule.SourceField)
		out[rule.TargetField] = v
	}

	return out
}

// MapEmployee прогоняет нормализованную запись через правила тенанта.
// Нативный id вендора правилами не переносится — это ключ идемпотентности.
func MapEmployee(emp dto.HREmployee, rules []dto.FieldMapping) (dto.HREmployee, error) {
	if len(rules) == 0 {
		return emp, nil
	}

	raw, err := json.Marshal(emp)
	if err != nil {
		return emp, fmt.Errorf("json.Marshal: %w", err)
	}

	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return emp, fmt.Errorf("json.Unmarshal: %w", err)
	}

	mapped, err := json.Marshal(ApplyMappings(record, rules))
	if err != nil {
		return emp, fmt.Errorf("json.Marshal mapped: %w", err)
	}

	var out dto.HREmployee
	if err := json.Unmarshal(mapped, &out); err != nil {
		return emp, fmt.Errorf("json.Unmarshal mapped: %w", err)
	}

	out.ID = emp.ID

	return out, nil
}
