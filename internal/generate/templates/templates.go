// Package templates holds the files the BrightScript generator renders:
// the shared runtime, copied verbatim, and text/template sources for
// message modules, the handler registry and the output README.
package templates

import "embed"

//go:embed runtime.brs *.tmpl
var FS embed.FS

const (
	Runtime  = "runtime.brs"
	Message  = "message.brs.tmpl"
	Registry = "index.brs.tmpl"
	Readme   = "readme.md.tmpl"
)
