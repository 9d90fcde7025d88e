package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteOperators outputs the roster, dispatching based on the output format configured.
func WriteOperators(ops []schema.Operator, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	return writeFormatted(cfg, formatWriters{
		json:  func(w io.Writer) error { return writeJSON(w, ops) },
		csv:   func(w io.Writer) error { return writeCSVOperators(w, ops, fmtFloat, intFmt) },
		table: func(w io.Writer) error { return writeOperatorsTable(ops, fmtFloat, intFmt, w) },
	})
}

// writeOperatorsTable generates and writes the human-readable table.
func writeOperatorsTable(ops []schema.Operator, fmtFloat func(float64) string, intFmt string, w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Operator", "Group", "Stores", "Avg Score", "Total Salary"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, op := range ops {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			op.OperatorName,
			op.GroupName,
			fmt.Sprintf(intFmt, op.StoreCount),
			fmtFloat(op.AvgScore),
			fmtFloat(op.TotalSalary),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d operators\n", len(ops))
	return err
}

// writeCSVOperators writes one record per operator.
func writeCSVOperators(w io.Writer, ops []schema.Operator, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"operator_name", "group_name", "store_count", "avg_score", "total_salary"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, op := range ops {
			rec := []string{
				op.OperatorName,
				op.GroupName,
				fmt.Sprintf(intFmt, op.StoreCount),
				fmtFloat(op.AvgScore),
				fmtFloat(op.TotalSalary),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
