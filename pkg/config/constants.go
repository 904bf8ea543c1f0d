package config

const (
	EnvPrefix = "CREAMERY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "CREAMERY_APP_ENV"
	EnvPort   = "CREAMERY_APP_PORT"

	EnvDBDSN  = "CREAMERY_DB_DSN"
	EnvDBHost = "CREAMERY_DB_HOST"
	EnvDBUser = "CREAMERY_DB_USER"
	EnvDBName = "CREAMERY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
