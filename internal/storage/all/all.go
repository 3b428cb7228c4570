// Package all links every storage backend into a binary with one import.
package all

import (
	_ "autodash/internal/storage/mssql"
	_ "autodash/internal/storage/postgres"
	_ "autodash/internal/storage/sqlite"
)
