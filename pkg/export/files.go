package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

// WriteInfraCSV writes the fueling infrastructure table to w.
func WriteInfraCSV(w io.Writer, recs []InfraRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"year", "technology", "element", "added_kw"}); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{strconv.Itoa(r.Year), strconv.Itoa(r.Technology), strconv.Itoa(r.Element), fmtF(r.AddedKW)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteModeInfraCSV writes the mode infrastructure table to w.
func WriteModeInfraCSV(w io.Writer, recs []ModeInfraRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"year", "mode", "element", "added_ukm"}); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{strconv.Itoa(r.Year), strconv.Itoa(r.Mode), strconv.Itoa(r.Element), fmtF(r.AddedUkm)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBudgetCSV writes the budget slack table to w.
func WriteBudgetCSV(w io.Writer, recs []BudgetRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"year", "route", "overrun", "shortfall"}); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{strconv.Itoa(r.Year), strconv.Itoa(r.Route), fmtF(r.Overrun), fmtF(r.Shortfall)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFiles writes the plan into a fresh run directory under dir, one CSV
// per table plus a YAML summary. The directory name carries a run id so
// repeated solves of the same case never overwrite each other. It returns
// the created directory.
func WriteFiles(dir, caseName string, p *Plan) (string, error) {
	runDir := filepath.Join(dir, fmt.Sprintf("%s-%s", caseName, uuid.NewString()))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"fleet.csv", func(w io.Writer) error { return WriteFleetCSV(w, p.Fleet) }},
		{"flows.csv", func(w io.Writer) error { return WriteFlowCSV(w, p.Flows) }},
		{"fueling.csv", func(w io.Writer) error { return WriteFuelingCSV(w, p.Fueling) }},
		{"infrastructure.csv", func(w io.Writer) error { return WriteInfraCSV(w, p.Infra) }},
		{"mode_infrastructure.csv", func(w io.Writer) error { return WriteModeInfraCSV(w, p.ModeInfra) }},
		{"budget.csv", func(w io.Writer) error { return WriteBudgetCSV(w, p.Budget) }},
		{"summary.yaml", func(w io.Writer) error { return WriteYAML(w, p) }},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(runDir, f.name), f.write); err != nil {
			return "", err
		}
	}
	return runDir, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
