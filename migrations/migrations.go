// Package migrations embeds the SQL schema scripts.
package migrations

import (
	"embed"
	"fmt"
)

//go:embed *.sql
var files embed.FS

// Schema is the name of the only migration
const Schema = "001_create_schema"

// Script returns the up or down script of a migration
func Script(name, direction string) (string, error) {
	if direction != "up" && direction != "down" {
		return "", fmt.Errorf("invalid migration direction %q", direction)
	}
	data, err := files.ReadFile(fmt.Sprintf("%s.%s.sql", name, direction))
	if err != nil {
		return "", fmt.Errorf("migration %s %s not found: %w", name, direction, err)
	}
	return string(data), nil
}
