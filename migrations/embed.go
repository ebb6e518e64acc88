// Package migrations embeds the SQL schema.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Up returns the names and contents of the up migrations in apply order.
func Up() ([]string, map[string]string, error) {
	entries, err := fs.Glob(files, "*.up.sql")
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(entries)
	contents := make(map[string]string, len(entries))
	for _, name := range entries {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, nil, err
		}
		contents[strings.TrimSuffix(name, ".up.sql")] = string(data)
	}
	names := make([]string, len(entries))
	for i, name := range entries {
		names[i] = strings.TrimSuffix(name, ".up.sql")
	}
	return names, contents, nil
}
