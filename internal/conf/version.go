package conf

const (
	APP_NAME = "jzrestapi"
	APP_DESC = "API marketplace gateway for social media downloaders and lookup services"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	Author    = "JzuvGTI"
	Repo      = "https://github.com/JzuvGTI/jzrestapi"
)
