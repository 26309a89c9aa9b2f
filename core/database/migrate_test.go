package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestUpFilesOrderedByVersion(t *testing.T) {
	src := fstest.MapFS{
		"sqlite3/10_indexes.up.sql":   {Data: []byte("")},
		"sqlite3/2_profiles.up.sql":   {Data: []byte("")},
		"sqlite3/2_profiles.down.sql": {Data: []byte("")},
		"postgres/1_profiles.up.sql":  {Data: []byte("")},
		"sqlite3/1_init.up.sql":       {Data: []byte("")},
	}
	files := upFiles(src, "sqlite3")
	assert.Equal(t, []string{"1_init.up.sql", "2_profiles.up.sql", "10_indexes.up.sql"}, files)

	assert.Equal(t, []string{"2_profiles.up.sql", "10_indexes.up.sql"}, between(files, 1, 10))
	assert.Empty(t, between(files, 10, 10))
	assert.Empty(t, upFiles(src, "mysql"))
}
