package heuristics

import "github.com/devjuank/FinanceService/internal/models"

type inferenceRule struct {
	keywords    []string
	category    string
	subcategory string
}

// defaultInference is evaluated in order; the first rule with a matching
// keyword wins.
var defaultInference = []inferenceRule{
	{[]string{"iva", "percepción", "ganancias", "tax", "impuesto", "sircreb", "arca", "afip"}, "impuestos", "impuestos y contribuciones"},
	{[]string{"netflix", "spotify", "youtube", "primevideo", "disney", "steam"}, "entretenimiento", "servicios digitales"},
	{[]string{"pedidosya", "rappi", "mcdonalds", "burger", "grido", "mostaza"}, "comida", "delivery"},
	{[]string{"metrogas", "aysa", "edenor", "edesur", "personal flow", "claro", "telecom"}, "servicios", "hogar"},
	{[]string{"intereses pagados", "mantenimiento"}, "financiero", "comisiones/intereses"},
	{[]string{"reintegro promoción", "devolucion"}, "ingresos", "reintegros"},
	{[]string{"sueldo", "haberes"}, "ingresos", "sueldo"},
}

// InferCategory returns the heuristic category for a description, or nils
// when nothing matches.
func InferCategory(description string) (category, subcategory *string) {
	for _, rule := range defaultInference {
		if ContainsAny(description, rule.keywords...) {
			return models.OptionalString(rule.category), models.OptionalString(rule.subcategory)
		}
	}
	return nil, nil
}
