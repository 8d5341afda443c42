// internal/stages/application/validate-application/handler.go
package validateapplication

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"vortexzz-apply/internal/common/logger"
	"vortexzz-apply/internal/models"
)

const (
	TaskType = "validate-application"
)

var (
	ErrApplicationValidationFailed = errors.New("APPLICATION_VALIDATION_FAILED")
)

// lineBreaks is stripped from single-line inputs, as a browser does for text inputs.
var lineBreaks = strings.NewReplacer("\r", "", "\n", "")

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Execute evaluates every rule independently. On failure it returns the Output with
// all failures together with an error wrapping ErrApplicationValidationFailed.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields := input.Fields
	name := lineBreaks.Replace(fields.Get(models.FieldName))
	ageRaw := lineBreaks.Replace(fields.Get(models.FieldAge))
	discord := lineBreaks.Replace(fields.Get(models.FieldDiscord))
	experience := strings.TrimSpace(fields.Get(models.FieldExperience))
	motivation := fields.Get(models.FieldMotivation)

	var validationErrors []models.FieldError

	if fe := h.validateMinLength(models.FieldName, name, h.config.MinNameLength, MsgName); fe != nil {
		validationErrors = append(validationErrors, *fe)
	}

	age, fe := h.validateAge(ageRaw)
	if fe != nil {
		validationErrors = append(validationErrors, *fe)
	}

	if fe := h.validateMinLength(models.FieldDiscord, discord, h.config.MinDiscordLength, MsgDiscord); fe != nil {
		validationErrors = append(validationErrors, *fe)
	}

	if fe := h.validateExperience(experience); fe != nil {
		validationErrors = append(validationErrors, *fe)
	}

	if fe := h.validateMinLength(models.FieldMotivation, motivation, h.config.MinMotivationLength, MsgMotivation); fe != nil {
		validationErrors = append(validationErrors, *fe)
	}

	isValid := len(validationErrors) == 0
	h.logger.Info("validation completed", map[string]interface{}{
		"isValid":    isValid,
		"errorCount": len(validationErrors),
	})

	if !isValid {
		return &Output{
			IsValid:          false,
			ValidationErrors: validationErrors,
		}, fmt.Errorf("%w: %d validation errors", ErrApplicationValidationFailed, len(validationErrors))
	}

	return &Output{
		IsValid: true,
		Application: &models.Application{
			Name:            name,
			Age:             age,
			Discord:         discord,
			PriorExperience: experience == models.ExperienceYes,
			Motivation:      motivation,
			SubmittedAt:     input.SubmittedAt,
		},
		ValidationErrors: []models.FieldError{},
	}, nil
}

func (h *Handler) validateMinLength(field models.Field, value string, minLen int, msg string) *models.FieldError {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return &models.FieldError{Field: field, Code: CodeMissingRequired, Message: msg}
	}
	if utf8.RuneCountInString(trimmed) < minLen {
		return &models.FieldError{Field: field, Code: CodeTooShort, Message: msg}
	}
	return nil
}

// validateAge reports missing, non-numeric and out-of-range ages with distinct codes
// but the same message.
func (h *Handler) validateAge(raw string) (int, *models.FieldError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, &models.FieldError{Field: models.FieldAge, Code: CodeMissingRequired, Message: MsgAge}
	}
	age, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &models.FieldError{Field: models.FieldAge, Code: CodeInvalidValue, Message: MsgAge}
	}
	if age < h.config.MinAge || age > h.config.MaxAge {
		return 0, &models.FieldError{Field: models.FieldAge, Code: CodeOutOfRange, Message: MsgAge}
	}
	return age, nil
}

func (h *Handler) validateExperience(value string) *models.FieldError {
	switch value {
	case models.ExperienceYes, models.ExperienceNo:
		return nil
	case "":
		return &models.FieldError{Field: models.FieldExperience, Code: CodeMissingRequired, Message: MsgExperience}
	default:
		return &models.FieldError{Field: models.FieldExperience, Code: CodeInvalidOption, Message: MsgExperience}
	}
}
