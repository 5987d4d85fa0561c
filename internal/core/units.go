package core

import (
	"strings"
	"unicode"
)

// Keyword tables for unit classification. Each table maps a lowercase keyword
// to the unit it implies. Tokens with a numeric prefix ("10m", "500ml") are
// matched on their unit suffix. Categories are tested in the fixed order of
// unitCategories; the first table containing a match wins.
var (
	lengthKeywords = map[string]MeasurementUnit{
		"m":       UnitMeter,
		"mt":      UnitMeter,
		"mts":     UnitMeter,
		"metro":   UnitMeter,
		"metros":  UnitMeter,
		"fita":    UnitMeter,
		"fitas":   UnitMeter,
		"cetim":   UnitMeter,
		"fio":     UnitMeter,
		"cordao":  UnitMeter,
		"cordão":  UnitMeter,
		"barbante": UnitMeter,
		"tecido":  UnitMeter,
		"tnt":     UnitMeter,
		"renda":   UnitMeter,
		"cm":      UnitCentimeter,
	}

	volumeKeywords = map[string]MeasurementUnit{
		"l":       UnitLiter,
		"lt":      UnitLiter,
		"litro":   UnitLiter,
		"litros":  UnitLiter,
		"oleo":    UnitLiter,
		"óleo":    UnitLiter,
		"essencia": UnitLiter,
		"essência": UnitLiter,
		"ml":      UnitMilliliter,
	}

	massKeywords = map[string]MeasurementUnit{
		"kg":     UnitKilogram,
		"kgs":    UnitKilogram,
		"quilo":  UnitKilogram,
		"quilos": UnitKilogram,
		"kilo":   UnitKilogram,
	}

	fineMassKeywords = map[string]MeasurementUnit{
		"g":       UnitGram,
		"gr":      UnitGram,
		"grama":   UnitGram,
		"gramas":  UnitGram,
		"glitter": UnitGram,
	}

	packagingKeywords = map[string]MeasurementUnit{
		"pacote":  UnitPackage,
		"pacotes": UnitPackage,
		"pct":     UnitPackage,
		"embalagem": UnitPackage,
		"rolo":    UnitRoll,
		"rolos":   UnitRoll,
		"bobina":  UnitRoll,
		"caixa":   UnitBox,
		"caixas":  UnitBox,
		"cx":      UnitBox,
	}

	countKeywords = map[string]MeasurementUnit{
		"un":       UnitPiece,
		"und":      UnitPiece,
		"unid":     UnitPiece,
		"unidade":  UnitPiece,
		"unidades": UnitPiece,
		"peca":     UnitPiece,
		"peça":     UnitPiece,
		"pecas":    UnitPiece,
		"peças":    UnitPiece,
		"par":      UnitPiece,
		"pares":    UnitPiece,
	}

	// Priority order: first matching category wins, not best match.
	unitCategories = []map[string]MeasurementUnit{
		lengthKeywords,
		volumeKeywords,
		massKeywords,
		fineMassKeywords,
		packagingKeywords,
		countKeywords,
	}
)

// ClassifyUnit maps a free-text item name to a measurement unit using the
// keyword tables above. It is pure and total: unknown names classify as
// UnitPiece.
func ClassifyUnit(name string) MeasurementUnit {
	tokens := strings.Fields(strings.ToLower(name))
	for _, table := range unitCategories {
		for _, tok := range tokens {
			if u, ok := table[tok]; ok {
				return u
			}
			// "10m", "500ml": strip the leading digits and retry.
			if suffix := stripNumericPrefix(tok); suffix != "" && suffix != tok {
				if u, ok := table[suffix]; ok {
					return u
				}
			}
		}
	}
	return UnitPiece
}

// stripNumericPrefix removes leading digits (and decimal separators) from a
// token, returning the remaining suffix. "500ml" → "ml", "10" → "".
func stripNumericPrefix(tok string) string {
	i := 0
	for i < len(tok) {
		r := rune(tok[i])
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			break
		}
		i++
	}
	if i == 0 {
		return tok
	}
	return tok[i:]
}
