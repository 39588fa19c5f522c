// Package schemas embeds the JSON Schemas used to validate catalog and
// task YAML files.
package schemas

import _ "embed"

//go:embed catalog.schema.json
var CatalogSchemaJSON string

//go:embed task.schema.json
var TaskSchemaJSON string
