package entity

import "github.com/shopspring/decimal"

// CategoryValue agregación de productos por categoría.
type CategoryValue struct {
	Category      string
	ProductCount  int
	TotalQuantity int64
	TotalValue    decimal.Decimal // Σ quantity × price
}

// StockSummary indicadores generales del inventario.
type StockSummary struct {
	TotalProducts int
	LowStock      int // 0 < quantity <= umbral
	OutOfStock    int // quantity == 0
	TotalQuantity int64
	TotalValue    decimal.Decimal
}
