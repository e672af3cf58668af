package heuristics

// Source kinds understood by the adapters.
const (
	KindBrubank       = "brubank"
	KindMercadoPago   = "mercadopago"
	KindDeel          = "deel"
	KindSantanderXLSX = "santander_xlsx"
	KindSantanderVisa = "santander_visa"
)

// Kinds lists every supported source kind in processing order.
func Kinds() []string {
	return []string{KindBrubank, KindMercadoPago, KindDeel, KindSantanderXLSX, KindSantanderVisa}
}

// IsKnownKind reports whether kind names a supported adapter.
func IsKnownKind(kind string) bool {
	for _, k := range Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// DefaultKeywords returns the keyword lists used by a source kind when the
// configuration does not provide its own. For deel the transfer list holds
// transaction types, matched exactly.
func DefaultKeywords(kind string) Keywords {
	switch kind {
	case KindBrubank:
		return Keywords{
			Transfer: []string{"cuenta tuya", "transferencia", "enviada", "recibida"},
			Fee:      []string{"comisión", "reimpresión", "intereses pagados", "mantenimiento"},
			Tax:      []string{"iva", "percepción", "ganancias", "impuesto", "sircreb", "arca", "afip"},
		}
	case KindMercadoPago:
		return Keywords{
			Transfer: []string{"transferencia", "enviaste", "recibiste", "de una cuenta tuya", "a una cuenta tuya"},
			Fee:      []string{"comisión"},
			Tax:      []string{"percepción", "iva", "impuesto", "arca"},
		}
	case KindDeel:
		return Keywords{
			Transfer: []string{"withdrawal", "deel_card_withdrawal"},
			Fee:      []string{"fee"},
			Tax:      []string{"tax"},
		}
	case KindSantanderXLSX:
		return Keywords{
			Transfer: []string{"transferencia"},
			Fee:      []string{"comision", "cargo", "interes"},
			Tax:      []string{"impuesto", "iva", "percepción", "sircreb", "db.rg"},
		}
	case KindSantanderVisa:
		return Keywords{
			Transfer: []string{"su pago", "pago en"},
			Fee:      []string{"comision", "cargo", "interes"},
			Tax:      []string{"impuesto", "iva", "percepción", "db.rg"},
		}
	default:
		return Keywords{}
	}
}
