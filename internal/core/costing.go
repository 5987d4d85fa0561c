package core

import (
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

// BlendedUnitCost recomputes a material's weighted-average unit cost after a
// purchase:
//
//	new = (stockQty × unitCost + inQty × inCost) / (stockQty + inQty)
//
// When the combined quantity is zero the incoming cost is returned, avoiding
// division by zero. With non-negative inputs the result is non-negative and
// always lies between the two input costs.
func BlendedUnitCost(stockQty, unitCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	totalQty := stockQty.Add(inQty)
	if totalQty.IsZero() {
		return inCost
	}
	totalValue := stockQty.Mul(unitCost).Add(inQty.Mul(inCost))
	return totalValue.Div(totalQty)
}

var leadingCountPattern = regexp.MustCompile(`^\s*(\d+)\s+`)

// PackSize detects materials whose catalog entry represents a multi-unit
// package by a leading integer count in the name ("50 Unidades Saquinho" → 50).
// Names without a leading count return 1.
func PackSize(name string) int {
	m := leadingCountPattern.FindStringSubmatch(name)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ProductCost computes the production cost of one product unit from its
// recipe entries. For pack-named materials the catalog cost is divided by the
// pack size to obtain a per-individual-unit cost before multiplying by the
// quantity consumed. Read-only; recomputed on every call because material
// costs move with each purchase.
func ProductCost(entries []RecipeEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		unitCost := e.MaterialUnitCost
		if pack := PackSize(e.MaterialName); pack > 1 {
			unitCost = unitCost.Div(decimal.NewFromInt(int64(pack)))
		}
		total = total.Add(unitCost.Mul(e.QuantityConsumed))
	}
	return total
}
