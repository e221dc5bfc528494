// Package migrations embeds the SQL schema the gateway depends on.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
