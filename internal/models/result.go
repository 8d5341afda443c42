package models

import "time"

// ResultView is what replaces the form after a successful submission.
type ResultView struct {
	Text                string    `json:"text"`
	Header              string    `json:"header"`
	CopyHeading         string    `json:"copyHeading"`
	CopyLabel           string    `json:"copyLabel"`
	CopiedLabel         string    `json:"copiedLabel"`
	CopyFailedAlert     string    `json:"copyFailedAlert"`
	InstructionsHeading string    `json:"instructionsHeading"`
	Steps               []Step    `json:"steps"`
	Actions             []Action  `json:"actions"`
	FormattedAt         time.Time `json:"formattedAt"`
}

// Step is one entry of the numbered instructions.
type Step struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	LinkURL   string `json:"linkUrl,omitempty"`
	LinkLabel string `json:"linkLabel,omitempty"`
}

const (
	ActionKindReset = "reset"
	ActionKindLink  = "link"
)

// Action is a button or link under the result.
type Action struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
	Icon  string `json:"icon,omitempty"`
}
