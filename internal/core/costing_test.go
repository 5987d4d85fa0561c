package core_test

import (
	"testing"

	"giftbox-manager/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBlendedUnitCost(t *testing.T) {
	tests := []struct {
		name                      string
		stockQty, unitCost        string
		inQty, inCost             string
		want                      string
	}{
		{"empty stock takes incoming cost", "0", "0", "10", "2.50", "2.50"},
		{"equal costs stay put", "10", "3.00", "5", "3.00", "3.00"},
		{"blend is quantity-weighted", "10", "2.00", "10", "4.00", "3.00"},
		{"zero incoming keeps old cost", "8", "1.25", "0", "99.00", "1.25"},
		{"degenerate all-zero", "0", "0", "0", "7.77", "7.77"},
	}

	for _, tt := range tests {
		got := core.BlendedUnitCost(dec(tt.stockQty), dec(tt.unitCost), dec(tt.inQty), dec(tt.inCost))
		if !got.Equal(dec(tt.want)) {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestBlendedUnitCost_SplitApplicationEquivalence(t *testing.T) {
	// Applying one combined purchase must equal two sequential partial
	// purchases at the same cost.
	combined := core.BlendedUnitCost(dec("10"), dec("2.00"), dec("6"), dec("5.00"))

	step1 := core.BlendedUnitCost(dec("10"), dec("2.00"), dec("2"), dec("5.00"))
	step2 := core.BlendedUnitCost(dec("12"), step1, dec("4"), dec("5.00"))

	if diff := combined.Sub(step2).Abs(); diff.GreaterThan(dec("0.0000001")) {
		t.Errorf("split application diverged: combined %s vs stepped %s", combined, step2)
	}
}

func TestBlendedUnitCost_BetweenInputCosts(t *testing.T) {
	lo, hi := dec("1.00"), dec("9.00")
	got := core.BlendedUnitCost(dec("3"), lo, dec("7"), hi)
	if got.LessThan(lo) || got.GreaterThan(hi) {
		t.Errorf("blended cost %s outside input range [%s, %s]", got, lo, hi)
	}
}

func TestPackSize(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"50 Unidades Saquinho", 50},
		{"100 Tags Kraft", 100},
		{"Fita de Cetim", 1},
		{"Balão Bubble 24", 1}, // trailing number is not a pack count
		{"  12 Velas", 12},
		{"0 Itens", 1}, // nonsensical count falls back to 1
		{"", 1},
	}
	for _, tt := range tests {
		if got := core.PackSize(tt.name); got != tt.want {
			t.Errorf("PackSize(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestProductCost_PackCorrection(t *testing.T) {
	entries := []core.RecipeEntry{
		{
			MaterialName:     "50 Unidades Saquinho",
			MaterialUnitCost: dec("25.00"), // cost of the 50-pack
			QuantityConsumed: dec("2"),     // 2 individual bags
		},
	}
	got := core.ProductCost(entries)
	if !got.Equal(dec("1.00")) {
		t.Errorf("pack-corrected cost = %s, want 1.00", got)
	}
}

func TestProductCost_MixedRecipe(t *testing.T) {
	entries := []core.RecipeEntry{
		{MaterialName: "Fita de Cetim", MaterialUnitCost: dec("0.80"), QuantityConsumed: dec("1.5")},
		{MaterialName: "50 Unidades Saquinho", MaterialUnitCost: dec("25.00"), QuantityConsumed: dec("2")},
		{MaterialName: "Vela Aromática", MaterialUnitCost: dec("4.00"), QuantityConsumed: dec("1")},
	}
	// 1.2 + 1.00 + 4.00
	if got := core.ProductCost(entries); !got.Equal(dec("6.20")) {
		t.Errorf("recipe cost = %s, want 6.20", got)
	}
}

func TestProductCost_EmptyRecipe(t *testing.T) {
	if got := core.ProductCost(nil); !got.IsZero() {
		t.Errorf("empty recipe should cost zero, got %s", got)
	}
}
