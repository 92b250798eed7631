package consts

const (
	ParamStartDate = "start_date"
	ParamEndDate   = "end_date"
	ParamDate      = "date"
	ParamApiKey    = "api_key"

	TimeFormat = "2006-01-02"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	MsgUpdated  = "Updated image URL to: %s"
	MsgNoUpdate = "No update needed. Same image URL."
)
