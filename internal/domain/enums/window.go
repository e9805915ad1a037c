package enums

import (
	"fmt"
	"strings"
)

// Window is a quota reset cadence. Permanent windows never reset; their
// ceilings apply to live entity counts rather than consumption counters.
type Window string

const (
	WindowDaily     Window = "daily"
	WindowMonthly   Window = "monthly"
	WindowPermanent Window = "permanent"
)

func AllWindows() []Window {
	return []Window{WindowDaily, WindowMonthly, WindowPermanent}
}

func (w Window) Valid() bool {
	switch w {
	case WindowDaily, WindowMonthly, WindowPermanent:
		return true
	}
	return false
}

func ParseWindow(raw string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(raw)))
	if !w.Valid() {
		return "", fmt.Errorf("unknown window %q", raw)
	}
	return w, nil
}
