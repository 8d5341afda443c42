// internal/stages/application/format-application/models.go
package formatapplication

import (
	"time"

	"vortexzz-apply/internal/models"
)

type Input struct {
	Application models.Application `json:"application"`
}

type Output struct {
	Text        string    `json:"text"`
	FormattedAt time.Time `json:"formattedAt"`
}

// Template labels. The document is pasted verbatim into a Discord ticket, so these
// must not change.
const (
	Title              = "MODERATOR-BEWERBUNG"
	LabelName          = "Name: "
	LabelAge           = "Alter: "
	LabelDiscord       = "Discord: "
	LabelExperience    = "Mod-Erfahrung: "
	LabelMotivation    = "Motivation:"
	LabelSubmittedAt   = "Bewerbung eingereicht: "
	ExperienceLabelYes = "Ja"
	ExperienceLabelNo  = "Nein"
)

// TimestampLayout matches de-DE Date.toLocaleString output, e.g. "5.3.2024, 09:07:03".
const TimestampLayout = "2.1.2006, 15:04:05"
