package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema generates a JSON schema for the config file, for editor completion
// and the `folio config schema` command.
func Schema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		KeyNamer:       mapstructureKey,
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "folio configuration"
	schema.Description = "Configuration schema for the folio document viewer"

	return json.MarshalIndent(schema, "", "  ")
}

// mapstructureKey lowercases struct field names so schema keys match the
// mapstructure tags viper decodes with.
func mapstructureKey(name string) string {
	switch name {
	case "Database":
		return "database"
	case "Viewer":
		return "viewer"
	case "Printing":
		return "printing"
	case "Logging":
		return "logging"
	}
	return name
}
