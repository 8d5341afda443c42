// internal/stages/application/validate-application/config.go
package validateapplication

type Config struct {
	MinNameLength       int
	MinDiscordLength    int
	MinMotivationLength int
	MinAge              int
	MaxAge              int
}

func LoadConfig() *Config {
	return &Config{
		MinNameLength:       2,
		MinDiscordLength:    3,
		MinMotivationLength: 20,
		MinAge:              16,
		MaxAge:              99,
	}
}
