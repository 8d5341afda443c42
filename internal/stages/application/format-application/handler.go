// internal/stages/application/format-application/handler.go
package formatapplication

import (
	"context"
	"strconv"
	"strings"
	"time"

	"vortexzz-apply/internal/common/logger"
	"vortexzz-apply/internal/models"
)

const TaskType = "format-application"

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Execute renders the application document stamped with the current time.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	formattedAt := h.config.Now().In(h.config.Location)
	text := Format(input.Application, formattedAt)

	h.logger.Debug("application formatted", map[string]interface{}{
		"bytes":       len(text),
		"formattedAt": formattedAt.Format(time.RFC3339),
	})

	return &Output{
		Text:        text,
		FormattedAt: formattedAt,
	}, nil
}

// Format is the pure template function behind Execute.
func Format(app models.Application, at time.Time) string {
	var b strings.Builder
	b.WriteString(Title)
	b.WriteString("\n\n")
	b.WriteString(LabelName + app.Name + "\n")
	b.WriteString(LabelAge + strconv.Itoa(app.Age) + "\n")
	b.WriteString(LabelDiscord + app.Discord + "\n")
	b.WriteString(LabelExperience + app.ExperienceLabel() + "\n")
	b.WriteString("\n")
	b.WriteString(LabelMotivation + "\n")
	b.WriteString(app.Motivation)
	b.WriteString("\n\n")
	b.WriteString(LabelSubmittedAt + at.Format(TimestampLayout))
	return b.String()
}
