// Package output provides utilities for formatting and displaying solve results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/compare"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
	"github.com/iwvelando/fantasy-f1-optimiser/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NoTransfersMessage is shown when the optimal roster matches the previous one.
const NoTransfersMessage = "No transfers needed. The optimal team is the same as the previous team."

// WriteResult renders one solve in the given format.
func WriteResult(w io.Writer, format string, r *roster.Result) error {
	switch format {
	case constants.OutputFormatPretty:
		PrettyFormat(w, r)
		return nil
	case constants.OutputFormatCSV:
		return CsvFormat(w, []*roster.Result{r})
	case constants.OutputFormatJSON:
		return JSONFormat(w, r)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteComparison renders a comparison report in the given format.
func WriteComparison(w io.Writer, format string, report *compare.Report) error {
	switch format {
	case constants.OutputFormatPretty:
		PrettyComparison(w, report)
		return nil
	case constants.OutputFormatCSV:
		return CsvComparison(w, report)
	case constants.OutputFormatJSON:
		return JSONFormat(w, NewComparisonView(report))
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// PrettyFormat outputs a human-readable summary of one solve.
func PrettyFormat(w io.Writer, r *roster.Result) {
	p := message.NewPrinter(language.English)

	_, _ = fmt.Fprintf(w, "--- %s solve ---\n", r.SolveName)
	for _, note := range r.Notes {
		_, _ = fmt.Fprintf(w, "Note: %s\n", note)
	}

	_, _ = fmt.Fprintf(w, "\nTransfers to Make:\n")
	_, _ = fmt.Fprintf(w, "---------------------\n")
	if len(r.Transfers) == 0 {
		_, _ = fmt.Fprintln(w, NoTransfersMessage)
	}
	for _, t := range r.Transfers {
		_, _ = fmt.Fprintln(w, t.String())
	}

	_, _ = fmt.Fprintf(w, "\nOptimal Team Selection:\n")
	_, _ = fmt.Fprintf(w, "---------------------\n")
	_, _ = fmt.Fprintf(w, "Selected Drivers: %s\n", strings.Join(r.SelectedDrivers, ", "))
	_, _ = fmt.Fprintf(w, "Selected Constructors: %s\n", strings.Join(r.SelectedConstructors, ", "))
	if r.Mode == roster.ModeDrsBoost {
		_, _ = fmt.Fprintf(w, "2x DRS Boost Driver: %s\n", r.Boosts[roster.Boost2x])
		_, _ = fmt.Fprintf(w, "3x DRS Boost Driver: %s\n", r.Boosts[roster.Boost3x])
		_, _ = p.Fprintf(w, "Total Expected Points (Base): %.2f\n", r.BaseXPts)
		_, _ = fmt.Fprintf(w, "Projected Team Price Change: %s\n", r.ProjectedPriceChange.StringFixed(2))
	} else {
		_, _ = fmt.Fprintf(w, "DRS Boost Driver: %s\n", r.Boosts[roster.Boost2x])
		_, _ = p.Fprintf(w, "Total Expected Points: %.2f\n", r.BaseXPts)
	}
	_, _ = p.Fprintf(w, "Transfers Used: %d\n", r.TransfersUsed)
	_, _ = fmt.Fprintf(w, "Penalty Transfers: %s\n", formatCount(r.PenaltyTransfers))
	_, _ = p.Fprintf(w, "Available Transfers: %d\n", r.AvailableTransfers)
	_, _ = fmt.Fprintf(w, "Cost Cap: %s\n", r.CostCap.StringFixed(2))
	_, _ = fmt.Fprintf(w, "Total Team Cost: %s\n", r.TotalCost.StringFixed(2))
	_, _ = fmt.Fprintf(w, "Remaining Budget: %s\n", r.RemainingBudget.StringFixed(2))
}

// PrettyComparison outputs one row per mode with its delta against Normal.
func PrettyComparison(w io.Writer, report *compare.Report) {
	p := message.NewPrinter(language.English)
	_, _ = fmt.Fprintf(w, "Mode      | Base xPts | vs Normal | Transfers | Cost   | Boosts\n")
	_, _ = fmt.Fprintf(w, "____      | _________ | _________ | _________ | ____   | ______\n")
	for _, row := range report.Rows {
		if row.Failed() {
			_, _ = fmt.Fprintf(w, "%-9s | failed: %v\n", row.Mode.SolveName(), row.Err)
			continue
		}
		r := row.Result
		_, _ = p.Fprintf(w, "%-9s | %9.2f | %9s | %9d | %6s | %s\n",
			r.SolveName, r.BaseXPts, formatDelta(row.Delta), r.TransfersUsed,
			r.TotalCost.StringFixed(constants.PricePrecision), formatBoosts(r))
	}
	if best, ok := report.Best(); ok {
		_, _ = fmt.Fprintf(w, "\nBest mode: %s\n", best.Result.SolveName)
	}
}

var csvHeader = []string{
	"mode", "drivers", "constructors", "boost_2x", "boost_3x", "transfers",
	"base_xpts", "projected_price_change", "transfers_used", "penalty_transfers",
	"available_transfers", "cost_cap", "total_cost", "remaining_budget",
}

// CsvFormat outputs one CSV row per result.
func CsvFormat(w io.Writer, results []*roster.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(resultRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvComparison outputs the comparison with a delta and error column.
func CsvComparison(w io.Writer, report *compare.Report) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, csvHeader...), "delta_vs_normal", "error")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range report.Rows {
		record := make([]string, len(csvHeader))
		record[0] = row.Mode.String()
		errText := ""
		if row.Failed() {
			errText = row.Err.Error()
		} else {
			record = resultRecord(row.Result)
		}
		delta := ""
		if row.Delta != nil {
			delta = strconv.FormatFloat(*row.Delta, 'f', 2, 64)
		}
		if err := cw.Write(append(record, delta, errText)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func resultRecord(r *roster.Result) []string {
	return []string{
		r.Mode.String(),
		strings.Join(r.SelectedDrivers, ";"),
		strings.Join(r.SelectedConstructors, ";"),
		r.Boosts[roster.Boost2x],
		r.Boosts[roster.Boost3x],
		strings.Join(r.TransferStrings(), ";"),
		strconv.FormatFloat(r.BaseXPts, 'f', 2, 64),
		r.ProjectedPriceChange.StringFixed(2),
		strconv.Itoa(r.TransfersUsed),
		formatCount(r.PenaltyTransfers),
		strconv.Itoa(r.AvailableTransfers),
		r.CostCap.StringFixed(2),
		r.TotalCost.StringFixed(2),
		r.RemainingBudget.StringFixed(2),
	}
}

// JSONFormat outputs v as indented JSON.
func JSONFormat(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ComparisonRowView is the serializable form of a comparison row.
type ComparisonRowView struct {
	Mode   roster.Mode    `json:"mode"`
	Result *roster.Result `json:"result,omitempty"`
	Delta  *float64       `json:"deltaVsNormal,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// ComparisonView is the serializable form of a comparison report.
type ComparisonView struct {
	Rows     []ComparisonRowView `json:"rows"`
	BestMode *roster.Mode        `json:"bestMode,omitempty"`
	Duration string              `json:"duration"`
}

// NewComparisonView flattens a report for JSON encoding.
func NewComparisonView(report *compare.Report) ComparisonView {
	view := ComparisonView{Rows: make([]ComparisonRowView, 0, len(report.Rows)), Duration: report.Elapsed.String()}
	for _, row := range report.Rows {
		v := ComparisonRowView{Mode: row.Mode, Result: row.Result, Delta: row.Delta}
		if row.Err != nil {
			v.Error = row.Err.Error()
		}
		view.Rows = append(view.Rows, v)
	}
	if best, ok := report.Best(); ok {
		mode := best.Mode
		view.BestMode = &mode
	}
	return view
}

// WriteState renders a stored team state in the given format.
func WriteState(w io.Writer, format string, s roster.TeamState) error {
	switch format {
	case constants.OutputFormatPretty:
		PrettyState(w, s)
		return nil
	case constants.OutputFormatCSV:
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"drivers", "constructors", "available_transfers", "remaining_budget"})
		_ = cw.Write([]string{
			strings.Join(s.Drivers, ";"),
			strings.Join(s.Constructors, ";"),
			strconv.Itoa(s.AvailableTransfers),
			s.RemainingBudget.String(),
		})
		cw.Flush()
		return cw.Error()
	case constants.OutputFormatJSON:
		return JSONFormat(w, s)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// PrettyState outputs a stored team state.
func PrettyState(w io.Writer, s roster.TeamState) {
	if s.IsFirstRound() {
		_, _ = fmt.Fprintf(w, "No saved team. The next solve is a first round with a budget of %s.\n",
			s.RemainingBudget.StringFixed(2))
		return
	}
	_, _ = fmt.Fprintf(w, "Drivers: %s\n", strings.Join(s.Drivers, ", "))
	_, _ = fmt.Fprintf(w, "Constructors: %s\n", strings.Join(s.Constructors, ", "))
	_, _ = fmt.Fprintf(w, "Available Transfers: %d\n", s.AvailableTransfers)
	_, _ = fmt.Fprintf(w, "Remaining Budget: %s\n", s.RemainingBudget.StringFixed(2))
}

func formatDelta(d *float64) string {
	if d == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f", *d)
}

func formatBoosts(r *roster.Result) string {
	if r.Mode == roster.ModeDrsBoost {
		return fmt.Sprintf("3x %s, 2x %s", r.Boosts[roster.Boost3x], r.Boosts[roster.Boost2x])
	}
	return "2x " + r.Boosts[roster.Boost2x]
}

// formatCount prints whole counts without a fraction.
func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
