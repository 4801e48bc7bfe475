// Package schemas embeds the JSON Schemas for knapsack input documents.
package schemas

import _ "embed"

// ProblemSchemaJSON is the schema for YAML/JSON problem files.
//
//go:embed problem.schema.json
var ProblemSchemaJSON string
