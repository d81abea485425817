// Package migrations embeds the versioned schema for every supported driver.
package migrations

import "embed"

// FS holds one directory per dialect: sqlite, postgresql and mysql.
//
//go:embed sqlite/*.sql postgresql/*.sql mysql/*.sql
var FS embed.FS
