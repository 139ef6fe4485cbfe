package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// WriteCSV writes the header and every row of frame to w
func WriteCSV(w io.Writer, frame *Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(frame.Headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(frame.Rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// WriteCSVFile creates (or truncates) path and writes frame to it
func WriteCSVFile(path string, frame *Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := WriteCSV(file, frame); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
