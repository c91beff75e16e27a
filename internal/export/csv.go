package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/qdynsim/internal/dynamo"
)

// WriteCSV writes one row per recorded time: the time followed by the real
// and imaginary part of every component.
func WriteCSV(out io.Writer, result *dynamo.Result) error {
	w := csv.NewWriter(out)

	if len(result.Y) == 0 {
		return nil
	}

	header := []string{"time"}
	for i := range result.Y[0] {
		header = append(header, fmt.Sprintf("re%d", i), fmt.Sprintf("im%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, y := range result.Y {
		row := make([]string, 0, 1+2*len(y))
		row = append(row, strconv.FormatFloat(result.T[i], 'g', 17, 64))
		for _, v := range y {
			row = append(row,
				strconv.FormatFloat(real(v), 'g', 17, 64),
				strconv.FormatFloat(imag(v), 'g', 17, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV parses a trajectory written by WriteCSV. Metrics and stats are not
// part of the format and stay empty.
func ReadCSV(in io.Reader) (*dynamo.Result, error) {
	records, err := csv.NewReader(in).ReadAll()
	if err != nil {
		return nil, err
	}

	res := &dynamo.Result{}
	if len(records) < 2 {
		return res, nil
	}
	if len(records[0]) < 3 || records[0][0] != "time" {
		return nil, fmt.Errorf("unexpected header %v", records[0])
	}

	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		y := make(dynamo.State, (len(record)-1)/2)
		for j := range y {
			re, err := strconv.ParseFloat(record[1+2*j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			im, err := strconv.ParseFloat(record[2+2*j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			y[j] = complex(re, im)
		}
		res.T = append(res.T, t)
		res.Y = append(res.Y, y)
	}
	return res, nil
}
