package models

// Category is the closed set of product classes the model may assign.
type Category string

const (
	CategoryExtratoDeTomate     Category = "extrato_de_tomate"
	CategoryMolhoDeTomate       Category = "molho_de_tomate"
	CategoryPassata             Category = "passata"
	CategoryTomatePelado        Category = "tomate_pelado"
	CategoryBiscoitoRecheado    Category = "biscoito_recheado"
	CategoryRefrigerante        Category = "refrigerante"
	CategoryIogurte             Category = "iogurte"
	CategoryCerealMatinal       Category = "cereal_matinal"
	CategoryMacarraoInstantaneo Category = "macarrao_instantaneo"
	CategoryOutros              Category = "outros"
)

// Categories lists every valid Category in declaration order.
var Categories = []Category{
	CategoryExtratoDeTomate,
	CategoryMolhoDeTomate,
	CategoryPassata,
	CategoryTomatePelado,
	CategoryBiscoitoRecheado,
	CategoryRefrigerante,
	CategoryIogurte,
	CategoryCerealMatinal,
	CategoryMacarraoInstantaneo,
	CategoryOutros,
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
