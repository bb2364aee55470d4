package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hwerrors "github.com/hwcatalog/hwsearch/internal/errors"
)

const sampleCatalog = `{
	"PERFA0192": {"name": "Perforadora Industrial 192W", "category": "Herramientas Electricas", "brand": "Bosch"},
	"MART12": {"name": "Martillo Carpintero 12oz", "category": "Herramientas Manuales"},
	"BROCA8MM": {"name": "Broca de pared 08 mm", "category": "Accesorios", "price": 3.5}
}`

func TestJSONStore_GetProduct(t *testing.T) {
	store, err := NewJSONStore([]byte(sampleCatalog), "catalog.json")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	p, err := store.GetProduct(ctx, "PERFA0192")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "PERFA0192", p.Code)
	assert.Equal(t, "Perforadora Industrial 192W", p.Name)
	assert.Equal(t, "Bosch", p.Brand)

	// Unknown codes are not an error
	p, err = store.GetProduct(ctx, "NADA")
	require.NoError(t, err)
	assert.Nil(t, p)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestJSONStore_CodesAreSorted(t *testing.T) {
	store, err := NewJSONStore([]byte(sampleCatalog), "catalog.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"BROCA8MM", "MART12", "PERFA0192"}, store.Codes())
}

func TestNewJSONStore_InvalidJSON(t *testing.T) {
	_, err := NewJSONStore([]byte("{not json"), "catalog.json")
	require.Error(t, err)
	assert.Equal(t, hwerrors.ErrCodeCatalogCorrupt, hwerrors.GetCode(err))
}

func TestOpenJSON_MissingFile(t *testing.T) {
	_, err := OpenJSON(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, hwerrors.ErrCodeCatalogNotFound, hwerrors.GetCode(err))
}

func TestSQLiteStore_ImportAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	products := map[string]Product{
		"PERFA0192": {Name: "Perforadora Industrial 192W", Category: "Herramientas Electricas", Featured: true},
		"MART12":    {Name: "Martillo Carpintero 12oz", Price: 9.99},
	}
	require.NoError(t, store.Import(ctx, products))

	p, err := store.GetProduct(ctx, "PERFA0192")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Perforadora Industrial 192W", p.Name)
	assert.True(t, p.Featured)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Unknown codes are not an error
	p, err = store.GetProduct(ctx, "NADA")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSQLiteStore_ImportUpserts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	require.NoError(t, store.Import(ctx, map[string]Product{
		"MART12": {Name: "Martillo"},
	}))
	require.NoError(t, store.Import(ctx, map[string]Product{
		"MART12": {Name: "Martillo Carpintero", Discontinued: true},
	}))

	p, err := store.GetProduct(ctx, "MART12")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Martillo Carpintero", p.Name)
	assert.True(t, p.Discontinued)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
