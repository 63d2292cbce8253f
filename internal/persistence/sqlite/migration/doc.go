// Package migration applies versioned SQL files to a SQLite database.
//
// Migration files are named {version}_{description}.sql and are read from an
// fs.FS, typically an embed.FS compiled into the binary. Applied versions are
// recorded in the schema_migrations table so each file runs exactly once.
package migration
