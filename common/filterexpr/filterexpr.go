// Package filterexpr implements the shorthand shared by the --filter expressions: durations and
// sizes written as literals (mtime > 30d, size < 10MiB) and helper functions, on top of expr.
// Environments name their fields with `expr:"..."` struct tags.
package filterexpr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

var unitFactors = map[string]float64{
	"B":  1,
	"KB": 1e3, "MB": 1e6, "GB": 1e9, "TB": 1e12,
	"KiB": 1 << 10, "MiB": 1 << 20, "GiB": 1 << 30, "TiB": 1 << 40,
}

// Dialect describes which fields of an environment accept duration and size literals.
type Dialect struct {
	// TimeFields maps a name used in queries to the timestamp field it is compared against.
	// "age > 30d" with {"age": "date"} becomes date < ago("30d"), a timestamp older than 30 days.
	TimeFields map[string]string
	// SizeFields accept literals like 10MiB or 2KB.
	SizeFields []string

	timeRe *regexp.Regexp
	sizeRe *regexp.Regexp
}

// NewDialect returns a Dialect for the given time and size fields.
func NewDialect(timeFields map[string]string, sizeFields ...string) *Dialect {
	d := &Dialect{TimeFields: timeFields, SizeFields: sizeFields}
	if len(timeFields) > 0 {
		names := make([]string, 0, len(timeFields))
		for name := range timeFields {
			names = append(names, regexp.QuoteMeta(name))
		}
		d.timeRe = regexp.MustCompile(`\b(` + strings.Join(names, "|") + `)\s*(<=|>=|<|>)\s*([0-9]+(?:\.[0-9]+)?[smhdwMy])\b`)
	}
	if len(sizeFields) > 0 {
		names := make([]string, 0, len(sizeFields))
		for _, name := range sizeFields {
			names = append(names, regexp.QuoteMeta(name))
		}
		d.sizeRe = regexp.MustCompile(`\b(` + strings.Join(names, "|") + `)\s*(==|!=|<=|>=|<|>)\s*([0-9]+(?:\.[0-9]+)?(?:B|KB|MB|GB|TB|KiB|MiB|GiB|TiB))\b`)
	}
	return d
}

// Rewrite turns duration and size literals into ago() and bytes() calls. Quoted strings are left
// untouched.
func (d *Dialect) Rewrite(q string) string {
	var out strings.Builder
	for _, seg := range splitQuoted(q) {
		if seg.quoted {
			out.WriteString(seg.text)
			continue
		}
		text := seg.text
		if d.timeRe != nil {
			text = d.timeRe.ReplaceAllStringFunc(text, func(m string) string {
				parts := d.timeRe.FindStringSubmatch(m)
				return fmt.Sprintf("%s %s ago(%q)", d.TimeFields[parts[1]], invert(parts[2]), parts[3])
			})
		}
		if d.sizeRe != nil {
			text = d.sizeRe.ReplaceAllString(text, `$1 $2 bytes("$3")`)
		}
		out.WriteString(text)
	}
	return out.String()
}

// Compile rewrites q and compiles it against env. The expression must evaluate to a bool.
func (d *Dialect) Compile(q string, env any) (*vm.Program, error) {
	return expr.Compile(d.Rewrite(q), append([]expr.Option{expr.Env(env), expr.AsBool()}, Functions()...)...)
}

// Eval runs a program compiled by Compile.
func Eval(prog *vm.Program, env any) (bool, error) {
	out, err := expr.Run(prog, env)
	if err != nil {
		return false, err
	}
	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter expression resulted in a non-boolean value of type %T", out)
	}
	return result, nil
}

// Functions are the helpers available in every filter expression.
func Functions() []expr.Option {
	return []expr.Option{
		expr.Function("ago", func(params ...any) (any, error) { return Ago(params[0].(string)) }),
		expr.Function("bytes", func(params ...any) (any, error) { return ParseBytes(params[0].(string)) }),
		expr.Function("glob", func(params ...any) (any, error) { return globMatch(params[0].(string), params[1].(string)) }),
		expr.Function("regex", func(params ...any) (any, error) { return regexp.MatchString(params[1].(string), params[0].(string)) }),
		expr.Function("now", func(params ...any) (any, error) { return time.Now(), nil }),
	}
}

func invert(op string) string {
	switch op {
	case ">":
		return "<"
	case "<":
		return ">"
	case ">=":
		return "<="
	case "<=":
		return ">="
	}
	return op
}

type segment struct {
	text   string
	quoted bool
}

// splitQuoted splits q into quoted string literals (including their quotes) and the text between
// them. An unterminated literal runs to the end of q.
func splitQuoted(q string) []segment {
	segments := []segment{}
	start := 0
	for i := 0; i < len(q); i++ {
		quote := q[i]
		if quote != '"' && quote != '\'' && quote != '`' {
			continue
		}
		if i > start {
			segments = append(segments, segment{text: q[start:i]})
		}
		j := i + 1
		for ; j < len(q); j++ {
			if q[j] == '\\' && quote != '`' {
				j++
				continue
			}
			if q[j] == quote {
				break
			}
		}
		end := min(j+1, len(q))
		segments = append(segments, segment{text: q[i:end], quoted: true})
		start = end
		i = end - 1
	}
	if start < len(q) {
		segments = append(segments, segment{text: q[start:]})
	}
	return segments
}

// Ago returns time.Now() minus the parsed duration.
func Ago(durationStr string) (time.Time, error) {
	d, err := ParseExtendedDuration(durationStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().Add(-d), nil
}

// ParseExtendedDuration supports standard and custom units (d, w, M, y).
func ParseExtendedDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	var factor time.Duration
	num, unit := s[:len(s)-1], s[len(s)-1:]
	switch unit {
	case "d":
		factor = 24 * time.Hour
	case "w":
		factor = 7 * 24 * time.Hour
	case "M":
		factor = 30 * 24 * time.Hour
	case "y":
		factor = 365 * 24 * time.Hour
	default:
		return time.ParseDuration(s)
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return time.Duration(f * float64(factor)), nil
}

// ParseBytes converts size strings like 2KB or 3MiB into byte counts.
func ParseBytes(sizeStr string) (int64, error) {
	i := len(sizeStr)
	for i > 0 && (sizeStr[i-1] < '0' || sizeStr[i-1] > '9') {
		i--
	}
	num, unit := sizeStr[:i], strings.TrimSpace(sizeStr[i:])
	if unit == "" {
		unit = "B"
	}
	mul, ok := unitFactors[unit]
	if !ok {
		return 0, fmt.Errorf("unknown size unit %q", unit)
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", sizeStr, err)
	}
	return int64(f * mul), nil
}

func globMatch(s, pattern string) (bool, error) {
	return doublestar.Match(pattern, s)
}
