// Package schemas embeds the JSON Schemas that structured model replies are
// validated against.
package schemas

import "embed"

// FS holds every *.schema.json file of this directory.
//
//go:embed *.schema.json
var FS embed.FS

// TailoredCV is the schema file for the CV tailoring reply.
const TailoredCV = "tailored_cv.schema.json"
