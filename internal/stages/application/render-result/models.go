// internal/stages/application/render-result/models.go
package renderresult

import (
	"time"

	"vortexzz-apply/internal/models"
)

type Input struct {
	Text        string    `json:"text"`
	FormattedAt time.Time `json:"formattedAt"`
}

type Output struct {
	View models.ResultView `json:"view"`
}
