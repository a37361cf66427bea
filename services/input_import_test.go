package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetcraft/models"
	"budgetcraft/store"
)

const importCSV = "Nome,Categoria,Unidade,Preço,Fornecedor,Data\n" +
	"Areia média,Material,M3,\"120,50\",Depósito Sul,10/02/2025\n" +
	"Pedreiro,Mão de Obra,H,25,,\n"

func newTestImporter(s store.Store) *InputImporter {
	imp := NewInputImporter(s, 100)
	imp.Now = func() time.Time { return importToday }
	return imp
}

func TestInputImporter_Commit(t *testing.T) {
	// given
	ctx := context.Background()
	s := store.NewMemoryStore()
	imp := newTestImporter(s)

	// when
	res, err := imp.Commit(ctx, "u1", strings.NewReader(importCSV), "insumos.csv")

	// then
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalRows)
	assert.Equal(t, 2, res.Imported)
	assert.False(t, res.RolledBack)

	inputs, err := s.ListInputs(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	sand := inputs[0]
	assert.Equal(t, "Areia média", sand.Name)
	assert.Equal(t, 120.5, sand.UnitPrice)
	require.Len(t, sand.History, 1)
	assert.Equal(t, "Depósito Sul", sand.History[0].Supplier)
	assert.Equal(t, importToday, inputs[1].History[0].Date)
}

func TestInputImporter_CommitRejectsInvalidFile(t *testing.T) {
	// given
	ctx := context.Background()
	s := store.NewMemoryStore()
	imp := newTestImporter(s)
	body := importCSV + "Tijolo,Material,CAIXA,1,,\n"

	// when
	res, err := imp.Commit(ctx, "u1", strings.NewReader(body), "insumos.csv")

	// then
	require.NoError(t, err)
	assert.True(t, res.RolledBack)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 4, res.Errors[0].Row)

	inputs, err := s.ListInputs(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, inputs)
}

func TestInputImporter_ValidateAgainstCatalog(t *testing.T) {
	// given
	ctx := context.Background()
	s := store.NewMemoryStore()
	existing := models.Input{OwnerID: "u1", Name: "Pedreiro", Category: models.CategoryLabor, Unit: "H"}
	require.NoError(t, NewCatalog(s).CreateInput(ctx, &existing, models.PricePoint{Price: 20, Date: importToday}))

	// when
	res, err := newTestImporter(s).Validate(ctx, "u1", strings.NewReader(importCSV), "insumos.csv")

	// then
	require.NoError(t, err)
	assert.Equal(t, "insumos.csv", res.FileName)
	assert.Equal(t, 1, res.ValidRows)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Equal(t, "Nome", res.Errors[0].Field)
}

func TestInputImporter_OtherOwnersDoNotConflict(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	other := models.Input{OwnerID: "u2", Name: "Pedreiro", Category: models.CategoryLabor, Unit: "H"}
	require.NoError(t, NewCatalog(s).CreateInput(ctx, &other, models.PricePoint{Price: 20, Date: importToday}))

	res, err := newTestImporter(s).Commit(ctx, "u1", strings.NewReader(importCSV), "insumos.csv")

	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
}

func TestInputImporter_StoreFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestImporter(store.NewMemoryStore()).Commit(ctx, "u1", strings.NewReader(importCSV), "insumos.csv")

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
