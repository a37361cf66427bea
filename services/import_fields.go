package services

import "budgetcraft/models"

// TemplateField describes one column in the input import template.
type TemplateField struct {
	Key          string // internal name used while validating rows
	Label        string // human-readable header shown in Excel
	Description  string // shown on the Instructions sheet
	FormatRule   string
	ExampleValue string
	Required     bool
}

// InputTemplateFields returns the ordered columns of the input import file.
func InputTemplateFields() []TemplateField {
	return []TemplateField{
		{Key: "name", Label: "Nome", Description: "Nome do insumo, único no catálogo", ExampleValue: "Cimento CP-II 50kg", Required: true},
		{Key: "category", Label: "Categoria", Description: "Categoria do insumo (lista)", FormatRule: "Material, Mão de Obra, Equipamento ou Serviço", ExampleValue: "Material", Required: true},
		{Key: "unit", Label: "Unidade", Description: "Unidade de medida (lista)", FormatRule: "Uma das unidades do catálogo", ExampleValue: "KG", Required: true},
		{Key: "price", Label: "Preço", Description: "Preço unitário inicial", FormatRule: "Número >= 0, aceita 1.234,56", ExampleValue: "0,68", Required: true},
		{Key: "supplier", Label: "Fornecedor", Description: "Fornecedor da cotação", ExampleValue: "Casa do Construtor"},
		{Key: "date", Label: "Data", Description: "Data da cotação, hoje se vazio", FormatRule: "DD/MM/AAAA ou AAAA-MM-DD", ExampleValue: "15/01/2025"},
	}
}

// CategoryOptions lists the category labels offered in dropdowns.
func CategoryOptions() []string {
	out := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = c.Label()
	}
	return out
}

// UnitOptions lists the unit codes offered in dropdowns.
func UnitOptions() []string {
	out := make([]string, len(models.Units))
	for i, u := range models.Units {
		out[i] = string(u)
	}
	return out
}

// StatusOptions lists the budget statuses offered in dropdowns.
func StatusOptions() []string {
	out := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		out[i] = string(s)
	}
	return out
}
