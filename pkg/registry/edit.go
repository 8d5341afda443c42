package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Set changes one text field addressed by name. Steps are addressed as
// "step.<n>.title" or "step.<n>.body" with n starting at 1.
func (r *ContentRegistry) Set(field, value string) error {
	switch field {
	case "version":
		r.Version = value
	case "inviteUrl":
		r.InviteURL = value
	case "header":
		r.Result.Header = value
	case "copyHeading":
		r.Result.CopyHeading = value
	case "copyLabel":
		r.Result.CopyLabel = value
	case "copiedLabel":
		r.Result.CopiedLabel = value
	case "copyFailedAlert":
		r.Result.CopyFailedAlert = value
	case "instructionsHeading":
		r.Result.InstructionsHeading = value
	default:
		return r.setStep(field, value)
	}
	return nil
}

func (r *ContentRegistry) setStep(field, value string) error {
	parts := strings.Split(field, ".")
	if len(parts) != 3 || parts[0] != "step" {
		return fmt.Errorf("unknown field: %s", field)
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 1 || n > len(r.Result.Steps) {
		return fmt.Errorf("invalid step number in %s", field)
	}
	step := &r.Result.Steps[n-1]
	switch parts[2] {
	case "title":
		step.Title = value
	case "body":
		step.Body = value
	default:
		return fmt.Errorf("unknown step field: %s", parts[2])
	}
	return nil
}

// Encode stamps LastUpdated and returns the validated, indented document.
func (r *ContentRegistry) Encode(now time.Time) ([]byte, error) {
	r.LastUpdated = now.Format("2006-01-02")
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save encodes r and writes it to path, creating the directory if needed.
func (r *ContentRegistry) Save(path string, now time.Time) error {
	data, err := r.Encode(now)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
