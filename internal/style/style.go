// Package style derives visual attributes for calendar occurrences.
package style

import "github.com/bssong66/PerformanceTracker-sub000/internal/model"

// Border is the outline drawn around an occurrence chip.
type Border string

const (
	BorderSolid  Border = "solid"
	BorderDashed Border = "dashed"
	BorderNone   Border = "none"
)

// Attributes are the render hints for one occurrence.
type Attributes struct {
	Color         string  `json:"color"`
	Opacity       float64 `json:"opacity"`
	Border        Border  `json:"border"`
	Strikethrough bool    `json:"strikethrough"`
}

// Palette maps priorities onto colors. Keys are event priorities
// ("high", "medium", "low") and task priorities ("A", "B", "C").
type Palette map[string]string

// DefaultPalette returns the built-in priority colors.
func DefaultPalette() Palette {
	return Palette{
		string(model.PriorityHigh):   "#ef4444",
		string(model.PriorityMedium): "#f59e0b",
		string(model.PriorityLow):    "#10b981",
		string(model.TaskPriorityA):  "#dc2626",
		string(model.TaskPriorityB):  "#2563eb",
		string(model.TaskPriorityC):  "#6b7280",
	}
}

const (
	fallbackColor     = "#3b82f6"
	completedOpacity  = 0.5
	instanceOpacity   = 0.85
	taskOpacity       = 0.9
	defaultOpacityVal = 1.0
)

// Styler computes Attributes from an occurrence's kind, priority and
// completion.
type Styler struct {
	palette Palette
}

// New returns a Styler; missing palette entries fall back to the defaults.
func New(p Palette) Styler {
	merged := DefaultPalette()
	for k, v := range p {
		if v != "" {
			merged[k] = v
		}
	}
	return Styler{palette: merged}
}

// Style returns the attributes for o.
//
//   - an explicit occurrence color (event color, task project color) wins
//     over the priority palette
//   - generated recurring instances get a dashed border and reduced opacity
//   - tasks render without a border
//   - completed items are faded and struck through
func (s Styler) Style(o model.Occurrence) Attributes {
	a := Attributes{
		Color:   s.color(o),
		Opacity: defaultOpacityVal,
		Border:  BorderSolid,
	}

	switch {
	case o.Kind == model.KindTask:
		a.Border = BorderNone
		a.Opacity = taskOpacity
	case o.RecurringInstance:
		a.Border = BorderDashed
		a.Opacity = instanceOpacity
	}

	if o.Completed {
		a.Opacity = completedOpacity
		a.Strikethrough = true
	}
	return a
}

func (s Styler) color(o model.Occurrence) string {
	if o.Color != "" {
		return o.Color
	}
	if c, ok := s.palette[o.Priority]; ok && c != "" {
		return c
	}
	return fallbackColor
}
