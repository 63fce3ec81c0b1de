package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-ledger/internal/application/ledger"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
)

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		in     string
		places int32
		want   string
	}{
		{"0", 2, "0,00"},
		{"27.5", 2, "27,50"},
		{"1234567.891", 2, "1.234.567,89"},
		{"-25000", 2, "-25.000,00"},
		{"1.8333333333333333", 4, "1,8333"},
		{"999", 0, "999"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDecimal(decimal.RequireFromString(tt.in), tt.places))
		})
	}
}

func TestGenerateValuationPDF(t *testing.T) {
	g := NewMarotoReportGenerator(func(id string) string { return "Finca La Esperanza" })
	report := &ledger.ValuationReport{
		FarmID:      "f1",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Lines: []ledger.ValuationLine{
			{
				Material: entity.Material{ID: "m1", Code: "UREA", Name: "Urea 46%", Unit: "kg"},
				State: entity.InventoryState{
					SystemQuantity: decimal.NewFromInt(15), RealQuantity: decimal.NewFromInt(12),
					Shrinkage: decimal.NewFromInt(3), AveragePrice: decimal.RequireFromString("1.8333333333333333"),
					StockValue: decimal.NewFromInt(22),
				},
			},
			{
				Material: entity.Material{ID: "m2", Code: "CAL", Name: "Cal dolomita", Unit: "kg"},
				State:    entity.InventoryState{SystemQuantity: decimal.NewFromInt(-4), RealQuantity: decimal.NewFromInt(-4)},
			},
		},
		TotalStockValue: decimal.NewFromInt(22),
	}

	out, err := g.GenerateValuationPDF(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe ser un documento PDF")
}

func TestGenerateValuationPDF_SinInsumos(t *testing.T) {
	out, err := NewMarotoReportGenerator(nil).GenerateValuationPDF(context.Background(), &ledger.ValuationReport{FarmID: "f1"})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestGenerateValuationPDF_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMarotoReportGenerator(nil).GenerateValuationPDF(ctx, &ledger.ValuationReport{FarmID: "f1"})
	assert.ErrorIs(t, err, context.Canceled)
}
