package migrations

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestVersions(t *testing.T) {
	versions, err := Versions()

	require.NoError(t, err)
	assert.Equal(t, []uint{1}, versions)
}

func TestDownDropsEveryTableUpCreates(t *testing.T) {
	createRe := regexp.MustCompile(`(?i)CREATE TABLE (?:IF NOT EXISTS )?(\w+)`)
	dropRe := regexp.MustCompile(`(?i)DROP TABLE (?:IF EXISTS )?(\w+)`)

	ups, err := fs.Glob(sqlFiles, "sql/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		upSQL, err := fs.ReadFile(sqlFiles, up)
		require.NoError(t, err)
		downSQL, err := fs.ReadFile(sqlFiles, down)
		require.NoError(t, err, "missing down migration for %s", up)

		dropped := map[string]bool{}
		for _, m := range dropRe.FindAllStringSubmatch(string(downSQL), -1) {
			dropped[m[1]] = true
		}
		for _, m := range createRe.FindAllStringSubmatch(string(upSQL), -1) {
			assert.True(t, dropped[m[1]], "%s creates %s but %s does not drop it", up, m[1], down)
		}
	}
}

func TestMigrateLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := migrateLogger{logger: zap.New(core)}

	l.Printf("1/u storefront_schema (%s)\n", "12ms")

	assert.True(t, l.Verbose())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "1/u storefront_schema (12ms)", logs.All()[0].Message)
}
