package cmdfmt

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/bootusage/bootusage/ctl/pkg/config"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/viper"
)

// Stdout is where all command output is written.
var Stdout io.Writer = os.Stdout

// Printf writes formatted output to Stdout.
func Printf(format string, a ...any) {
	fmt.Fprintf(Stdout, format, a...)
}

type rowPrinter interface {
	SetColumnConfigs(configs []table.ColumnConfig)
	AppendRow(row table.Row, configs ...table.RowConfig)
	Render() string
}

// Printomatic collects rows and prints them as a table or JSON depending on the global output
// configuration. Columns not selected by the user (or the defaults) are hidden. Once page-size
// rows are collected they are flushed, repeating the table header.
type Printomatic struct {
	columns  []string
	configs  []table.ColumnConfig
	output   string
	pageSize int
	rows     int
	printer  rowPrinter
}

// NewPrintomatic creates a printer for allColumns. defaultColumns are shown unless the user
// selected columns with --columns ("all" shows every column).
func NewPrintomatic(allColumns []string, defaultColumns []string) Printomatic {
	selected := viper.GetStringSlice(config.ColumnsKey)
	if len(selected) == 0 {
		selected = defaultColumns
	}
	showAll := slices.Contains(selected, "all")

	configs := make([]table.ColumnConfig, 0, len(allColumns))
	for i, col := range allColumns {
		configs = append(configs, table.ColumnConfig{
			Name:   col,
			Number: i + 1,
			Hidden: !showAll && !slices.Contains(selected, col),
		})
	}

	p := Printomatic{
		columns:  allColumns,
		configs:  configs,
		output:   viper.GetString(config.OutputKey),
		pageSize: viper.GetInt(config.PageSizeKey),
	}
	p.reset()
	return p
}

func (p *Printomatic) reset() {
	p.rows = 0
	switch p.output {
	case config.OutputJSON:
		p.printer = newJSONPrinter(false)
	case config.OutputJSONPretty:
		p.printer = newJSONPrinter(true)
	default:
		tbl := table.NewWriter()
		tbl.SetStyle(table.StyleLight)
		tbl.Style().Options.DrawBorder = false
		tbl.Style().Options.SeparateColumns = false
		tbl.Style().Options.SeparateHeader = true
		header := make(table.Row, 0, len(p.columns))
		for _, col := range p.columns {
			header = append(header, strings.ToUpper(col))
		}
		tbl.AppendHeader(header)
		p.printer = tbl
	}
	p.printer.SetColumnConfigs(p.configs)
}

// AddItem appends a row. The number of values must match the number of columns.
func (p *Printomatic) AddItem(values ...any) {
	p.printer.AppendRow(table.Row(values))
	p.rows++
	if p.pageSize > 0 && p.rows >= p.pageSize {
		p.PrintRemaining()
	}
}

// PrintRemaining flushes any rows not printed yet.
func (p *Printomatic) PrintRemaining() {
	if p.rows == 0 {
		return
	}
	fmt.Fprintln(Stdout, p.printer.Render())
	p.reset()
}
