package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/san-kum/qdynsim/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		T: []float64{0, 0.5, 1},
		Y: []dynamo.State{
			{1, 0},
			{complex(0.5, 0.1), complex(0, -0.75)},
			{0, complex(0.25, 1)},
		},
		Metrics: map[string]float64{"population_1": 1},
		Stats:   dynamo.Stats{Accepted: 12, Rejected: 2, Evaluations: 84},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResult()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if header != "time,re0,im0,re1,im1" {
		t.Errorf("unexpected header %q", header)
	}

	res, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	want := sampleResult()
	if len(res.T) != len(want.T) {
		t.Fatalf("expected %d times, got %d", len(want.T), len(res.T))
	}
	for i := range want.Y {
		if res.T[i] != want.T[i] {
			t.Errorf("t[%d] = %v, want %v", i, res.T[i], want.T[i])
		}
		for j := range want.Y[i] {
			if res.Y[i][j] != want.Y[i][j] {
				t.Errorf("y[%d][%d] = %v, want %v", i, j, res.Y[i][j], want.Y[i][j])
			}
		}
	}
}

func TestCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, &dynamo.Result{}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
	res, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(res.Y) != 0 {
		t.Errorf("expected no states, got %d", len(res.Y))
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bad header", "t,x\n0,1\n"},
		{"bad time", "time,re0,im0\nzero,1,0\n"},
		{"bad value", "time,re0,im0\n0,one,0\n"},
		{"ragged", "time,re0,im0\n0,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	info := RunInfo{Name: "rabi", Method: "RK45", TEnd: 1}
	if err := WriteJSON(&buf, info, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data Data
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Steps != 3 {
		t.Errorf("expected 3 steps, got %d", data.Steps)
	}
	if data.Run.Name != "rabi" {
		t.Errorf("expected name rabi, got %q", data.Run.Name)
	}
	if data.Stats.Evaluations != 84 {
		t.Errorf("expected 84 evaluations, got %d", data.Stats.Evaluations)
	}
	if got := data.States[2][1]; got != [2]float64{0.25, 1} {
		t.Errorf("expected [0.25 1], got %v", got)
	}
}
