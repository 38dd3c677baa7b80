package cmdfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// jsonPrinter renders the rows collected by a Printomatic as a JSON list of objects keyed by
// column name. Hidden columns are omitted.
type jsonPrinter struct {
	columns []table.ColumnConfig
	rows    []map[string]any
	pretty  bool
}

func newJSONPrinter(pretty bool) *jsonPrinter {
	return &jsonPrinter{
		rows:   []map[string]any{},
		pretty: pretty,
	}
}

func (p *jsonPrinter) SetColumnConfigs(configs []table.ColumnConfig) {
	p.columns = configs
}

func (p *jsonPrinter) AppendRow(row table.Row, configs ...table.RowConfig) {
	if len(p.columns) != len(row) {
		panic(fmt.Sprintf("unable to print json, the number of keys %d does not match the number of values %d (this is likely a bug)", len(p.columns), len(row)))
	}
	item := make(map[string]any, len(row))
	for i, col := range p.columns {
		if !col.Hidden {
			item[col.Name] = row[i]
		}
	}
	p.rows = append(p.rows, item)
}

func (p *jsonPrinter) Render() string {
	return MarshalJSON(p.rows, p.pretty)
}

// MarshalJSON encodes v without escaping HTML characters. Values that cannot be encoded are a
// programming error.
func MarshalJSON(v any, pretty bool) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", " ")
	}
	if err := enc.Encode(v); err != nil {
		panic("unable to marshal json (this is likely a bug): " + err.Error())
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
