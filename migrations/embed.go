// Package migrations embeds the schema migrations for every supported database driver.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per driver name.
//
//go:embed postgres/*.sql sqlite3/*.sql mysql/*.sql
var FS embed.FS
