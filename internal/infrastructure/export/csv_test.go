package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

const bom = "\ufeff"

func TestCSVWriter_Layout(t *testing.T) {
	created := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	updated := created.Add(26 * time.Hour)
	products := []*entity.Product{
		{ID: 3, Code: "C-1", Name: "Cuaderno; rayado", Category: "Oficina", Quantity: 12, Price: decimal.RequireFromString("1234.5"), CreatedAt: created, UpdatedAt: updated},
		{ID: 9, Code: "L-2", Name: "Lápiz", Quantity: 0, Price: decimal.Zero, CreatedAt: created, UpdatedAt: created},
	}

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter().WriteProducts(&buf, products))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, bom), "la planilla empieza con BOM UTF-8")
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(out, bom), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Id;Codigo;Nome;Categoria;Quantidade;Preco;DataCriacao;DataAtualizacao", lines[0])
	assert.Equal(t, `3;C-1;"Cuaderno; rayado";Oficina;12;1234,50;05/03/2024 14:07:09;06/03/2024 16:07:09`, lines[1])
	assert.Equal(t, "9;L-2;Lápiz;;0;0,00;05/03/2024 14:07:09;05/03/2024 14:07:09", lines[2])
}

func TestCSVWriter_EmptyIsHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter().WriteProducts(&buf, nil))
	assert.Equal(t, bom+"Id;Codigo;Nome;Categoria;Quantidade;Preco;DataCriacao;DataAtualizacao\n", buf.String())
}
