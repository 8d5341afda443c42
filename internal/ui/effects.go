package ui

import (
	"math"
	"strings"
	"time"
)

const (
	NavbarHideOffset = 100.0

	ParallaxBaseSpeed = 0.5
	ParallaxStep      = 0.1

	RevealThreshold    = 0.1
	RevealBottomMargin = 50.0

	TypewriterInterval = 50 * time.Millisecond
	RippleLifetime     = 600 * time.Millisecond

	HoverTransform = "translateY(-2px)"
	RestTransform  = "translateY(0)"
)

// Rect is an element's bounding box relative to the viewport.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NavbarHidden hides the bar while scrolling down past the hide offset.
func NavbarHidden(scrollTop, lastScrollTop float64) bool {
	return scrollTop > lastScrollTop && scrollTop > NavbarHideOffset
}

// ParallaxOffsets returns the vertical offset of each gradient orb; orb i moves at
// 0.5 + 0.1*i times the scroll position.
func ParallaxOffsets(scrollTop float64, orbs int) []float64 {
	if orbs <= 0 {
		return nil
	}
	offsets := make([]float64, orbs)
	for i := range offsets {
		offsets[i] = scrollTop * (ParallaxBaseSpeed + float64(i)*ParallaxStep)
	}
	return offsets
}

// Revealed reports whether enough of r intersects the viewport, shrunk at the bottom
// by RevealBottomMargin, to fade the element in.
func Revealed(r Rect, viewportHeight float64) bool {
	rootBottom := viewportHeight - RevealBottomMargin
	if r.Height <= 0 {
		return r.Top >= 0 && r.Top <= rootBottom
	}
	visible := math.Min(r.Top+r.Height, rootBottom) - math.Max(r.Top, 0)
	if visible <= 0 {
		return false
	}
	return visible/r.Height >= RevealThreshold
}

// Frame is one step of the typewriter animation.
type Frame struct {
	AfterMs int64  `json:"afterMs"`
	Text    string `json:"text"`
}

// TypewriterFrames yields growing prefixes of text, one character per interval. The
// first character appears immediately.
func TypewriterFrames(text string, interval time.Duration) []Frame {
	runes := []rune(text)
	frames := make([]Frame, 0, len(runes))
	for i := range runes {
		frames = append(frames, Frame{
			AfterMs: int64(i) * interval.Milliseconds(),
			Text:    string(runes[:i+1]),
		})
	}
	return frames
}

// RippleSpec positions a click ripple inside a button.
type RippleSpec struct {
	Size       float64 `json:"size"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	RemoveInMs int64   `json:"removeInMs"`
}

// Ripple centres a square of the button's larger side on the click point.
func Ripple(button Rect, clientX, clientY float64) RippleSpec {
	size := math.Max(button.Width, button.Height)
	return RippleSpec{
		Size:       size,
		X:          clientX - button.Left - size/2,
		Y:          clientY - button.Top - size/2,
		RemoveInMs: RippleLifetime.Milliseconds(),
	}
}

// HoverTransformFor returns the button transform for pointer enter/leave.
func HoverTransformFor(entered bool) string {
	if entered {
		return HoverTransform
	}
	return RestTransform
}

// AnchorTarget extracts the element id of an in-page link such as "#apply".
func AnchorTarget(href string) (string, bool) {
	id, ok := strings.CutPrefix(href, "#")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
