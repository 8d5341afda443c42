// internal/stages/application/render-result/handler.go
package renderresult

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vortexzz-apply/internal/common/logger"
	"vortexzz-apply/internal/models"
	"vortexzz-apply/pkg/registry"
)

const TaskType = "render-result"

var ErrEmptyDocument = errors.New("EMPTY_DOCUMENT")

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil || config.Content == nil {
		config = LoadConfig()
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Content is the registry the handler renders from.
func (h *Handler) Content() *registry.ContentRegistry {
	return h.config.Content
}

// Execute builds the result view around the formatted document. The document text is
// carried through unchanged.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input.Text == "" {
		return nil, fmt.Errorf("%w: nothing to render", ErrEmptyDocument)
	}

	view := Render(h.config.Content, input.Text)
	view.FormattedAt = input.FormattedAt

	h.logger.Debug("result rendered", map[string]interface{}{
		"steps":   len(view.Steps),
		"actions": len(view.Actions),
	})

	return &Output{View: view}, nil
}

// Render maps registry content onto a result view for text.
func Render(content *registry.ContentRegistry, text string) models.ResultView {
	rc := content.Result

	steps := make([]models.Step, 0, len(rc.Steps))
	for i, s := range rc.Steps {
		step := models.Step{
			Number: i + 1,
			Title:  s.Title,
			Body:   s.Body,
		}
		if s.InviteLink {
			step.LinkURL = content.InviteURL
			step.LinkLabel = inviteLabel(content.InviteURL)
		}
		steps = append(steps, step)
	}

	actions := make([]models.Action, 0, len(rc.Actions))
	for _, a := range rc.Actions {
		action := models.Action{Kind: a.Kind, Label: a.Label, URL: a.URL, Icon: a.Icon}
		if action.Kind == models.ActionKindLink && action.URL == "" {
			action.URL = content.InviteURL
		}
		actions = append(actions, action)
	}

	return models.ResultView{
		Text:                text,
		Header:              rc.Header,
		CopyHeading:         rc.CopyHeading,
		CopyLabel:           rc.CopyLabel,
		CopiedLabel:         rc.CopiedLabel,
		CopyFailedAlert:     rc.CopyFailedAlert,
		InstructionsHeading: rc.InstructionsHeading,
		Steps:               steps,
		Actions:             actions,
	}
}

// inviteLabel shows the invite without its scheme, e.g. "discord.gg/g2SnbQk2Ds".
func inviteLabel(url string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if rest, ok := strings.CutPrefix(url, prefix); ok {
			return rest
		}
	}
	return url
}
