// internal/stages/application/render-result/config.go
package renderresult

import "vortexzz-apply/pkg/registry"

type Config struct {
	Content *registry.ContentRegistry
}

// LoadConfig uses the embedded content registry.
func LoadConfig() *Config {
	content, err := registry.Default()
	if err != nil {
		panic(err)
	}
	return &Config{
		Content: content,
	}
}
