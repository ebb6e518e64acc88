package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpListsMigrationsInOrder(t *testing.T) {
	names, contents, err := Up()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_catalog", names[0])
	assert.Contains(t, contents["0001_catalog"], "CONSTRAINT products_category_id_fkey")
	assert.Contains(t, contents["0001_catalog"], "CONSTRAINT products_supplier_id_fkey")
	assert.Contains(t, contents["0001_catalog"], "CREATE TABLE IF NOT EXISTS idempotency_keys")
}
