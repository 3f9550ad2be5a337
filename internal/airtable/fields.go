package airtable

import "formbridge/internal/form/models"

// fieldTypeMapping narrows provider column types to the question types the
// form engine supports. Columns outside this map are not offered for
// binding.
var fieldTypeMapping = map[string]models.QuestionType{
	"singleLineText":      models.TypeText,
	"multilineText":       models.TypeTextarea,
	"singleSelect":        models.TypeSelect,
	"multipleSelects":     models.TypeMultiselect,
	"multipleAttachments": models.TypeFile,
}

// SupportedFieldType reports whether a provider column type can back a
// question.
func SupportedFieldType(providerType string) bool {
	_, ok := fieldTypeMapping[providerType]
	return ok
}

// discoverFields filters a table's raw schema down to supported columns and
// maps each to its question type, carrying select choices as options.
func discoverFields(table Table) []DiscoveredField {
	fields := make([]DiscoveredField, 0, len(table.Fields))
	for _, f := range table.Fields {
		mapped, ok := fieldTypeMapping[f.Type]
		if !ok {
			continue
		}
		options := []string{}
		if f.Options != nil {
			for _, c := range f.Options.Choices {
				options = append(options, c.Name)
			}
		}
		fields = append(fields, DiscoveredField{
			ID:         f.ID,
			Name:       f.Name,
			Type:       f.Type,
			MappedType: mapped,
			Options:    options,
		})
	}
	return fields
}
