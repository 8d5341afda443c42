package formatapplication

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vortexzz-apply/internal/models"
)

var ErrMalformedDocument = errors.New("MALFORMED_DOCUMENT")

// Parse recovers the application fields and the formatting time from a document
// produced by Format. Timestamps are interpreted in loc.
func Parse(text string, loc *time.Location) (models.Application, time.Time, error) {
	var app models.Application

	header := Title + "\n\n"
	if !strings.HasPrefix(text, header) {
		return app, time.Time{}, fmt.Errorf("%w: missing title", ErrMalformedDocument)
	}
	rest := text[len(header):]

	lines := strings.SplitN(rest, "\n", 6)
	if len(lines) < 6 {
		return app, time.Time{}, fmt.Errorf("%w: truncated header block", ErrMalformedDocument)
	}

	var err error
	if app.Name, err = cutLabel(lines[0], LabelName); err != nil {
		return app, time.Time{}, err
	}
	ageStr, err := cutLabel(lines[1], LabelAge)
	if err != nil {
		return app, time.Time{}, err
	}
	if app.Age, err = strconv.Atoi(ageStr); err != nil {
		return app, time.Time{}, fmt.Errorf("%w: age %q", ErrMalformedDocument, ageStr)
	}
	if app.Discord, err = cutLabel(lines[2], LabelDiscord); err != nil {
		return app, time.Time{}, err
	}
	exp, err := cutLabel(lines[3], LabelExperience)
	if err != nil {
		return app, time.Time{}, err
	}
	switch exp {
	case ExperienceLabelYes:
		app.PriorExperience = true
	case ExperienceLabelNo:
		app.PriorExperience = false
	default:
		return app, time.Time{}, fmt.Errorf("%w: experience %q", ErrMalformedDocument, exp)
	}
	if lines[4] != "" {
		return app, time.Time{}, fmt.Errorf("%w: expected blank line after fields", ErrMalformedDocument)
	}

	body := lines[5]
	if !strings.HasPrefix(body, LabelMotivation+"\n") {
		return app, time.Time{}, fmt.Errorf("%w: missing motivation label", ErrMalformedDocument)
	}
	body = body[len(LabelMotivation)+1:]

	// The motivation is free text, so the footer is located from the end.
	sep := "\n\n" + LabelSubmittedAt
	idx := strings.LastIndex(body, sep)
	if idx < 0 {
		return app, time.Time{}, fmt.Errorf("%w: missing submission timestamp", ErrMalformedDocument)
	}
	app.Motivation = body[:idx]

	if loc == nil {
		loc = time.UTC
	}
	at, err := time.ParseInLocation(TimestampLayout, body[idx+len(sep):], loc)
	if err != nil {
		return app, time.Time{}, fmt.Errorf("%w: timestamp: %v", ErrMalformedDocument, err)
	}

	return app, at, nil
}

func cutLabel(line, label string) (string, error) {
	value, ok := strings.CutPrefix(line, label)
	if !ok {
		return "", fmt.Errorf("%w: expected %q", ErrMalformedDocument, strings.TrimSpace(label))
	}
	return value, nil
}
