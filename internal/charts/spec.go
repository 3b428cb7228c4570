// Package charts derives a bounded set of dashboard chart descriptors from
// a cleaned dataset. Every chart is best effort: a missing precondition
// skips that one chart and never aborts the rest.
package charts

import "math"

// Spec is the wire shape consumed by the dashboard renderer. The layout
// mirrors the renderer's charting library and must stay stable.
type Spec struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Data  Data   `json:"data"`
}

type Data struct {
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset holds one named series. Data is either []float64 or, for scatter
// charts, []Point.
type Dataset struct {
	Label           string `json:"label"`
	Data            any    `json:"data"`
	BackgroundColor any    `json:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty"`
	Fill            bool   `json:"fill,omitempty"`
	Stack           string `json:"stack,omitempty"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// palette is the fixed series color cycle.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

func colorAt(i int) string {
	return palette[i%len(palette)]
}

func colorsFor(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = colorAt(i)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
