// Package schemas embeds the JSON Schemas for documents the API accepts.
package schemas

import "embed"

// Schema file names
const (
	Assessment = "assessment.schema.json"
	Response   = "response.schema.json"
)

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
