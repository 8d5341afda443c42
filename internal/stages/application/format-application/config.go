// internal/stages/application/format-application/config.go
package formatapplication

import "time"

type Config struct {
	Location *time.Location
	Now      func() time.Time
}

func LoadConfig() *Config {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		loc = time.UTC
	}
	return &Config{
		Location: loc,
		Now:      time.Now,
	}
}
