// internal/stages/application/validate-application/models.go
package validateapplication

import (
	"time"

	"vortexzz-apply/internal/models"
)

type Input struct {
	Fields      models.FormValues `json:"fields"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

type Output struct {
	IsValid          bool                `json:"isValid"`
	Application      *models.Application `json:"application,omitempty"`
	ValidationErrors []models.FieldError `json:"validationErrors"`
}

// ErrorMap returns the failures keyed by field name, the shape the page renders inline.
func (o *Output) ErrorMap() map[string]string {
	out := make(map[string]string, len(o.ValidationErrors))
	for _, ve := range o.ValidationErrors {
		out[string(ve.Field)] = ve.Message
	}
	return out
}

const (
	CodeMissingRequired = "MISSING_REQUIRED"
	CodeTooShort        = "TOO_SHORT"
	CodeInvalidValue    = "INVALID_VALUE"
	CodeOutOfRange      = "OUT_OF_RANGE"
	CodeInvalidOption   = "INVALID_OPTION"
)

// Inline messages shown next to the fields.
const (
	MsgName       = "Name muss mindestens 2 Zeichen lang sein"
	MsgAge        = "Alter muss zwischen 16 und 99 Jahren liegen"
	MsgDiscord    = "Discord-Benutzername muss mindestens 3 Zeichen lang sein"
	MsgExperience = "Bitte wähle eine Option aus"
	MsgMotivation = "Motivation muss mindestens 20 Zeichen lang sein"
)
