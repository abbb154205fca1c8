package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Parallel()
	inst := &database.Instance{}
	assert.ErrorIs(t, Connect(inst, "", &database.Config{}), database.ErrNoDatabaseProvided)

	dir := t.TempDir()
	require.NoError(t, Connect(inst, dir, &database.Config{ConnectionDetails: database.ConnectionDetails{Database: "test.db"}}))
	assert.True(t, inst.IsConnected())
	assert.Equal(t, database.DBSQLite3, inst.Dialect())
	require.NoError(t, inst.Ping())
	assert.FileExists(t, filepath.Join(dir, "test.db"))
	require.NoError(t, inst.CloseConnection())
	assert.False(t, inst.IsConnected())
}
