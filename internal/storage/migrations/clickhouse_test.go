package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatements(t *testing.T) {
	sql := `-- header comment
CREATE TABLE a (x String);
INSERT INTO a VALUES ('x;y'), ('it''s');

-- trailing
`
	stmts, err := statements(sql)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x String)", stmts[0])
	assert.Equal(t, "INSERT INTO a VALUES ('x;y'), ('it''s')", stmts[1])
}

func TestStatements_UnterminatedString(t *testing.T) {
	_, err := statements("SELECT 'oops;")
	assert.Error(t, err)
}

func TestStatements_EmbeddedSchemaParses(t *testing.T) {
	files, err := sqlFiles(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		data, err := fs.ReadFile(ClickhouseFS, "clickhouse/"+file)
		require.NoError(t, err)
		stmts, err := statements(string(data))
		require.NoError(t, err, file)
		assert.NotEmpty(t, stmts, file)
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://u:p@localhost:9000/ledger")
	require.NoError(t, err)
	assert.Equal(t, "ledger", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}
