package dto

import "github.com/shopspring/decimal"

// CategoryValueResponse fila del reporte de valor por categoría.
type CategoryValueResponse struct {
	Category      string          `json:"category"`
	ProductCount  int             `json:"product_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// StockSummaryResponse indicadores del inventario (tablero).
type StockSummaryResponse struct {
	TotalProducts     int             `json:"total_products"`
	LowStock          int             `json:"low_stock"`
	OutOfStock        int             `json:"out_of_stock"`
	TotalQuantity     int64           `json:"total_quantity"`
	TotalValue        decimal.Decimal `json:"total_value"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}
