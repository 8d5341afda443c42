// pkg/registry/schema.go
package registry

// ContentRegistry holds the user-facing copy of the result view.
type ContentRegistry struct {
	Version     string        `json:"version"`
	LastUpdated string        `json:"lastUpdated"`
	InviteURL   string        `json:"inviteUrl"`
	Result      ResultContent `json:"result"`
}

type ResultContent struct {
	Header              string          `json:"header"`
	CopyHeading         string          `json:"copyHeading"`
	CopyLabel           string          `json:"copyLabel"`
	CopiedLabel         string          `json:"copiedLabel"`
	CopyFailedAlert     string          `json:"copyFailedAlert"`
	InstructionsHeading string          `json:"instructionsHeading"`
	Steps               []StepContent   `json:"steps"`
	Actions             []ActionContent `json:"actions"`
}

// StepContent is one instruction. A step with InviteLink renders the invite URL
// after Body.
type StepContent struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	InviteLink bool   `json:"inviteLink,omitempty"`
}

// ActionContent is a result action. Kind "link" with an empty URL points at the invite.
type ActionContent struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
	Icon  string `json:"icon,omitempty"`
}
