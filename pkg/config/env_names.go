package config

const (
	EnvPrefix = "TRACKSPLIT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TRACKSPLIT_DB_DSN"
	EnvDBHost = "TRACKSPLIT_DB_HOST"
	EnvDBUser = "TRACKSPLIT_DB_USER"
	EnvDBName = "TRACKSPLIT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
