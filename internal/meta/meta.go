// Where: internal/meta/meta.go
// What: CLI-local metadata constants.
// Why: Keep project identity and built-in defaults in one place.
package meta

const (
	// Project Identity
	AppName   = "shipit"
	EnvPrefix = "SHIPIT"

	// Directory Layout
	HomeDir        = ".shipit"
	CheckoutDir    = "src"
	LogFileName    = "shipit.log"
	ConfigFileName = "config.yaml"

	// Built-in Defaults
	DefaultRepoURL   = "https://github.com/graylanquantum/demo-app.git"
	DefaultTag       = "latest"
	DefaultRegistry  = "docker.io"
	MinEngineVersion = "24.0.0"

	// Engine Constants
	EngineGroup   = "docker"
	EngineService = "docker"
)
