package core_test

import (
	"testing"

	"giftbox-manager/internal/core"
)

func TestClassifyUnit(t *testing.T) {
	tests := []struct {
		name string
		want core.MeasurementUnit
	}{
		{"Fita de Cetim 10m", core.UnitMeter},
		{"Caneca Personalizada", core.UnitPiece},
		{"Óleo de Massagem 500ml", core.UnitLiter},
		{"Essência de Baunilha 30ml", core.UnitLiter},
		{"Vela Aromática 250g", core.UnitGram},
		{"Chocolate ao Leite 1kg", core.UnitKilogram},
		{"Pacote Saquinho Transparente", core.UnitPackage},
		{"Rolo Papel Seda", core.UnitRoll},
		{"Caixa Rígida 20cm", core.UnitCentimeter}, // length beats packaging
		{"Tag Par de Alianças", core.UnitPiece},
		{"", core.UnitPiece},
		{"500ml", core.UnitMilliliter}, // numeric-prefixed token, no other keyword
	}

	for _, tt := range tests {
		if got := core.ClassifyUnit(tt.name); got != tt.want {
			t.Errorf("ClassifyUnit(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestClassifyUnit_PriorityOrder(t *testing.T) {
	// A name hitting several categories must resolve by category priority,
	// not by token position: length > volume > mass > fine > packaging > count.
	if got := core.ClassifyUnit("Pacote Fita Metálica"); got != core.UnitMeter {
		t.Errorf("length keyword should win over packaging, got %q", got)
	}
	if got := core.ClassifyUnit("Caixa com Óleo Essencial"); got != core.UnitLiter {
		t.Errorf("volume keyword should win over packaging, got %q", got)
	}
	if got := core.ClassifyUnit("Unidade Glitter Dourado"); got != core.UnitGram {
		t.Errorf("fine-mass keyword should win over count, got %q", got)
	}
}
