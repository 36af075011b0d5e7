package config

// Application constants
const (
	// AppName is the human readable application name
	AppName = "metabulo"

	// EnvPrefix namespaces every environment variable, e.g. METABULO_SERVER_PORT
	EnvPrefix = "METABULO"

	// Supported database drivers
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// DefaultMaxUploadBytes caps an uploaded table at 50MB
	DefaultMaxUploadBytes = 50 << 20
)

// configFileLocations are searched in order when no config file is given
var configFileLocations = []string{
	"config.yaml",
	"configs/config.yaml",
	"../configs/config.yaml",
}
