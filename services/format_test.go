package services

import (
	"testing"

	"budgetcraft/models"
)

func TestFormatBRL_Values(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		expect string
	}{
		{"zero", 0, "R$ 0,00"},
		{"small integer", 5, "R$ 5,00"},
		{"with decimals", 42.50, "R$ 42,50"},
		{"hundreds", 999.99, "R$ 999,99"},
		{"thousands", 1234.56, "R$ 1.234,56"},
		{"millions", 1234567.89, "R$ 1.234.567,89"},
		{"exact thousands boundary", 1000, "R$ 1.000,00"},
		{"negative", -250.5, "-R$ 250,50"},
		{"negative thousands", -1647.67, "-R$ 1.647,67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBRL(tt.input)
			if got != tt.expect {
				t.Errorf("FormatBRL(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestFormatSignedBRL(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		expect string
	}{
		{"positive", 100, "+R$ 100,00"},
		{"negative", -100, "-R$ 100,00"},
		{"zero", 0, "R$ 0,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSignedBRL(tt.input); got != tt.expect {
				t.Errorf("FormatSignedBRL(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		expect string
	}{
		{"zero", 0, "0.0"},
		{"tiny share", 0.04, "<0.1"},
		{"boundary", 0.1, "0.1"},
		{"regular", 33.333, "33.3"},
		{"whole", 100, "100.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPercent(tt.input); got != tt.expect {
				t.Errorf("FormatPercent(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestFormatBDI(t *testing.T) {
	if got := FormatBDI(nil); got != "Não aplicado" {
		t.Errorf("FormatBDI(nil) = %q, want %q", got, "Não aplicado")
	}
	cfg := &models.BDIConfig{Profit: 20, Taxes: 35, Financial: 5, Guarantees: 2}
	if got := FormatBDI(cfg); got != "73,50%" {
		t.Errorf("FormatBDI(%+v) = %q, want %q", *cfg, got, "73,50%")
	}
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		input  float64
		expect float64
	}{
		{1647.6696, 1647.67},
		{0.005, 0.01},
		{10, 10},
	}
	for _, tt := range tests {
		if got := RoundMoney(tt.input); got != tt.expect {
			t.Errorf("RoundMoney(%v) = %v, want %v", tt.input, got, tt.expect)
		}
	}
}
