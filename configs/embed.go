// Package configs embeds the configuration template that
// 'hwsearch config init' writes into a project.
//
// The template is embedded at build time with //go:embed so it ships
// inside the binary regardless of how hwsearch was installed. Values
// in the template mirror the defaults in internal/config; a generated
// file therefore changes nothing until edited.
package configs

import _ "embed"

// ProjectConfigTemplate is the annotated .hwsearch.yaml starting point.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
