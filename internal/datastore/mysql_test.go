package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicecorpus/voicecorpus-go/internal/conf"
)

func TestBuildMySQLDSN(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Output.MySQL.Username = "corpus"
	settings.Output.MySQL.Password = "p@ss/word"
	settings.Output.MySQL.Database = "voicecorpus"
	settings.Output.MySQL.Host = "db.internal"
	settings.Output.MySQL.Port = "3307"

	dsn := buildMySQLDSN(settings)

	assert.Contains(t, dsn, "tcp(db.internal:3307)")
	assert.Contains(t, dsn, "/voicecorpus")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	// The driver reports changed rows unless clientFoundRows is set; the
	// zero-affected-rows checks in commit.go require matched-row counts so
	// that rewriting a row to its current values is not mistaken for a
	// missing row.
	assert.Contains(t, dsn, "clientFoundRows=true")
}

func TestValidateMySQLConfig(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Output.MySQL.Host = "localhost"
	require.Error(t, validateMySQLConfig(settings), "missing database name must fail")

	settings.Output.MySQL.Database = "voicecorpus"
	settings.Output.MySQL.Host = ""
	require.Error(t, validateMySQLConfig(settings), "missing host must fail")

	settings.Output.MySQL.Host = "localhost"
	require.NoError(t, validateMySQLConfig(settings))
}
