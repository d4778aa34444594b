package similarweb

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
)

// Device is the traffic segment an endpoint reports on.
type Device string

const (
	Desktop Device = "desktop"
	Mobile  Device = "mobile"
)

func (d Device) Valid() bool {
	return d == Desktop || d == Mobile
}

// Label is the capitalized name used by the interactive form.
func (d Device) Label() string {
	switch d {
	case Desktop:
		return "Desktop"
	case Mobile:
		return "Mobile"
	}
	return string(d)
}

// Selection is what the user asks for, `both` is expanded before any
// request is made and never appears in output.
type Selection string

const (
	SelectDesktop Selection = "desktop"
	SelectMobile  Selection = "mobile"
	SelectBoth    Selection = "both"
)

// canonical names and the form labels, nothing else is accepted
var selectionNames = map[string]Selection{
	"desktop": SelectDesktop,
	"Desktop": SelectDesktop,
	"mobile":  SelectMobile,
	"Mobile":  SelectMobile,
	"both":    SelectBoth,
	"Both":    SelectBoth,
}

func ParseSelection(value string) (Selection, error) {
	sel, ok := selectionNames[value]
	if ok {
		return sel, nil
	}
	return "", unknownValueError("device type", value, []string{"desktop", "mobile", "both"})
}

func ParseDevice(value string) (Device, error) {
	sel, ok := selectionNames[value]
	if ok && sel != SelectBoth {
		return Device(sel), nil
	}
	return "", unknownValueError("device", value, []string{"desktop", "mobile"})
}

// Devices expands the selection in output order, desktop before mobile.
func (s Selection) Devices() []Device {
	switch s {
	case SelectDesktop:
		return []Device{Desktop}
	case SelectMobile:
		return []Device{Mobile}
	case SelectBoth:
		return []Device{Desktop, Mobile}
	}
	return nil
}

func unknownValueError(kind, value string, options []string) error {
	var best string
	var bestScore float64
	lowered := strings.ToLower(strings.TrimSpace(value))
	for _, opt := range options {
		score := matchr.JaroWinkler(lowered, opt, false)
		if score > bestScore {
			bestScore = score
			best = opt
		}
	}
	if lowered != "" && bestScore >= 0.75 {
		return fmt.Errorf("unknown %s %q (did you mean %q?)", kind, value, best)
	}
	return fmt.Errorf(
		"unknown %s %q, expected one of %s",
		kind, value, strings.Join(options, ", "),
	)
}
