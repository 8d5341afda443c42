// internal/models/application.go
package models

import "time"

// Field identifies one input of the moderator application form.
type Field string

const (
	FieldName       Field = "name"
	FieldAge        Field = "age"
	FieldDiscord    Field = "discord"
	FieldExperience Field = "experience"
	FieldMotivation Field = "motivation"
)

// FormFields lists the form inputs in display and validation order.
var FormFields = []Field{
	FieldName,
	FieldAge,
	FieldDiscord,
	FieldExperience,
	FieldMotivation,
}

// IsFormField reports whether name is one of the form inputs.
func IsFormField(name string) bool {
	for _, f := range FormFields {
		if string(f) == name {
			return true
		}
	}
	return false
}

const (
	ExperienceYes = "yes"
	ExperienceNo  = "no"
)

// FormValues holds raw submitted values keyed by field name.
type FormValues map[string]string

// Get returns the raw value for a field, or "" when absent.
func (v FormValues) Get(field Field) string {
	if v == nil {
		return ""
	}
	return v[string(field)]
}

// Application is the validated content of one submission attempt.
type Application struct {
	Name            string    `json:"name"`
	Age             int       `json:"age"`
	Discord         string    `json:"discord"`
	PriorExperience bool      `json:"priorExperience"`
	Motivation      string    `json:"motivation"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// ExperienceLabel renders PriorExperience the way the pasted document expects it.
func (a Application) ExperienceLabel() string {
	if a.PriorExperience {
		return "Ja"
	}
	return "Nein"
}

// FieldError is one rejected field with its inline message.
type FieldError struct {
	Field   Field  `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
