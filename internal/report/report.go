// Package report renders registry collections as XLSX workbooks.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"relief-go/internal/relief"
)

// ErrNothingToReport is returned when the collection behind a report is empty.
var ErrNothingToReport = errors.New("nothing to report")

// Placeholders for references that no longer resolve.
const (
	NoHousehold = "No household"
	NoAddress   = "No address"
	NotReturned = "Not returned"
)

const dateLayout = "2006-01-02"

// Kind names one of the available reports.
type Kind string

const (
	KindHouseholds    Kind = "households"
	KindPeople        Kind = "people"
	KindAssignments   Kind = "assignments"
	KindDistributions Kind = "distributions"
	KindVisits        Kind = "visits"
)

// Kinds lists every report in the order GenerateAll writes them.
var Kinds = []Kind{KindHouseholds, KindPeople, KindAssignments, KindDistributions, KindVisits}

// ParseKind converts a command-line argument to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown report %q", s)
}

// FileName is the default output name for the report.
func (k Kind) FileName() string {
	return "report-" + string(k) + ".xlsx"
}

// Table is a rendered report before it is written to a workbook.
type Table struct {
	Sheet  string
	Title  string
	Header []string
	Widths []float64
	Rows   [][]any
}

// Generator builds reports from registry snapshots. It never writes to the
// registry.
type Generator struct {
	reg   *relief.Registry
	clock relief.Clock
}

// NewGenerator creates a Generator. A nil clock selects the real clock.
func NewGenerator(reg *relief.Registry, clock relief.Clock) *Generator {
	if clock == nil {
		clock = relief.RealClock{}
	}
	return &Generator{reg: reg, clock: clock}
}

// Table builds the rows of the report. An empty collection yields
// ErrNothingToReport.
func (g *Generator) Table(kind Kind) (*Table, error) {
	var t *Table
	switch kind {
	case KindHouseholds:
		t = g.households()
	case KindPeople:
		t = g.people()
	case KindAssignments:
		t = g.assignments()
	case KindDistributions:
		t = g.distributions()
	case KindVisits:
		t = g.visits()
	default:
		return nil, fmt.Errorf("unknown report %q", kind)
	}
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("%s report: %w", kind, ErrNothingToReport)
	}
	return t, nil
}

func (g *Generator) households() *Table {
	t := &Table{
		Sheet:  "Households",
		Title:  "Registered Households",
		Header: []string{"Address", "Phone", "Location", "Head of Family", "Members"},
		Widths: []float64{35, 15, 20, 25, 10},
	}
	for _, h := range g.reg.Households.List() {
		t.Rows = append(t.Rows, []any{h.Address, h.Phone, h.Location, g.reg.HeadOfFamily(h.ID), h.TotalMembers})
	}
	return t
}

func (g *Generator) people() *Table {
	t := &Table{
		Sheet:  "People",
		Title:  "Registered People",
		Header: []string{"Name", "Identification", "Birth Date", "Gender", "Relationship", "Address"},
		Widths: []float64{25, 18, 12, 8, 15, 35},
	}
	for _, p := range g.reg.People.List() {
		address := NoHousehold
		if h, ok := g.reg.ResolveHousehold(p.HouseholdID); ok {
			address = h.Address
		}
		t.Rows = append(t.Rows, []any{
			p.FullName(), p.Identification, p.BirthDate.Format(dateLayout),
			p.Gender.Short(), p.Relationship, address,
		})
	}
	return t
}

func (g *Generator) assignments() *Table {
	t := &Table{
		Sheet:  "Cylinder Assignments",
		Title:  "Gas Cylinder Assignments",
		Header: []string{"Cylinder", "Address", "Assigned", "Returned", "Status"},
		Widths: []float64{18, 35, 12, 14, 10},
	}
	for _, a := range g.reg.Assignments.List() {
		returned := NotReturned
		if a.ReturnedDate != nil {
			returned = a.ReturnedDate.Format(dateLayout)
		}
		t.Rows = append(t.Rows, []any{
			g.reg.CylinderSerial(a.CylinderID), g.address(a.HouseholdID),
			a.AssignedDate.Format(dateLayout), returned, a.Status.Label(),
		})
	}
	return t
}

func (g *Generator) distributions() *Table {
	t := &Table{
		Sheet:  "Bag Distributions",
		Title:  "Bag Distributions",
		Header: []string{"Address", "Quantity", "Distributed", "Distributed By", "Received By"},
		Widths: []float64{35, 10, 12, 20, 20},
	}
	for _, d := range g.reg.Distributions.List() {
		t.Rows = append(t.Rows, []any{
			g.address(d.HouseholdID), d.Quantity, d.DistributedDate.Format(dateLayout),
			d.DistributedBy, d.ReceivedBy,
		})
	}
	return t
}

func (g *Generator) visits() *Table {
	t := &Table{
		Sheet:  "Visits",
		Title:  "Community Visits",
		Header: []string{"Address", "Date", "Type", "Purpose", "Visited By"},
		Widths: []float64{35, 12, 12, 35, 20},
	}
	for _, v := range g.reg.Visits.List() {
		t.Rows = append(t.Rows, []any{
			g.address(v.HouseholdID), v.VisitDate.Format(dateLayout), v.VisitType.Label(),
			v.Purpose, v.VisitedBy,
		})
	}
	return t
}

func (g *Generator) address(householdID string) string {
	if h, ok := g.reg.ResolveHousehold(householdID); ok {
		return h.Address
	}
	return NoAddress
}

// Write renders the report as an XLSX workbook to w.
func (g *Generator) Write(w io.Writer, kind Kind) error {
	t, err := g.Table(kind)
	if err != nil {
		return err
	}
	f, err := g.workbook(t)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing %s report: %w", kind, err)
	}
	return nil
}

// WriteFile renders the report to path, replacing any existing file.
func (g *Generator) WriteFile(path string, kind Kind) error {
	t, err := g.Table(kind)
	if err != nil {
		return err
	}
	f, err := g.workbook(t)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s report to %s: %w", kind, path, err)
	}
	return nil
}

// GenerateAll writes every non-empty report into dir using the default file
// names and returns the paths written. When every collection is empty it
// returns ErrNothingToReport.
func (g *Generator) GenerateAll(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}
	var written []string
	for _, k := range Kinds {
		path := filepath.Join(dir, k.FileName())
		err := g.WriteFile(path, k)
		if errors.Is(err, ErrNothingToReport) {
			continue
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if len(written) == 0 {
		return nil, ErrNothingToReport
	}
	return written, nil
}

// workbook lays out t on a single sheet: a bold header row, then one row per
// record. The caller closes the returned file.
func (g *Generator) workbook(t *Table) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(t.Sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   t.Title,
		Creator: "relief",
		Created: g.clock.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("setting document properties: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("converting coordinates: %w", err)
	}
	if err := f.SetCellStyle(t.Sheet, "A1", last, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("styling header: %w", err)
	}

	for i, width := range t.Widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("converting column number: %w", err)
		}
		if err := f.SetColWidth(t.Sheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("setting column width: %w", err)
		}
	}

	for i, row := range t.Rows {
		if err := f.SetSheetRow(t.Sheet, "A"+strconv.Itoa(i+2), &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return f, nil
}
