package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/qdynsim/internal/dynamo"
)

// RunInfo describes how a trajectory was produced.
type RunInfo struct {
	Name       string  `json:"name"`
	System     string  `json:"system,omitempty"`
	Convention string  `json:"convention"`
	Method     string  `json:"method"`
	TStart     float64 `json:"t_start"`
	TEnd       float64 `json:"t_end"`
	RTol       float64 `json:"rtol"`
	ATol       float64 `json:"atol"`
}

type Data struct {
	Run     RunInfo            `json:"run"`
	Steps   int                `json:"steps"`
	Stats   dynamo.Stats       `json:"stats"`
	Times   []float64          `json:"times"`
	States  [][][2]float64     `json:"states"`
	Metrics map[string]float64 `json:"metrics"`
}

// WriteJSON writes the run as indented JSON. Complex components are encoded
// as [re, im] pairs.
func WriteJSON(w io.Writer, info RunInfo, result *dynamo.Result) error {
	data := Data{
		Run:     info,
		Steps:   len(result.T),
		Stats:   result.Stats,
		Times:   result.T,
		States:  make([][][2]float64, len(result.Y)),
		Metrics: result.Metrics,
	}
	for i, y := range result.Y {
		row := make([][2]float64, len(y))
		for j, v := range y {
			row[j] = [2]float64{real(v), imag(v)}
		}
		data.States[i] = row
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
