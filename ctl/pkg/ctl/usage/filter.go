package usage

import (
	"fmt"
	"strings"
	"time"

	"github.com/bootusage/bootusage/common/filterexpr"
)

// GenerationInfo is the environment generation filters are evaluated against.
type GenerationInfo struct {
	ID      int       `expr:"id"`
	Label   string    `expr:"label"`
	Current bool      `expr:"current"`
	Date    time.Time `expr:"date"`
	Files   int       `expr:"files"`  // Number of boot files
	Unique  int64     `expr:"unique"` // Bytes only used by this generation
	Shared  int64     `expr:"shared"` // Bytes shared with other generations
}

const GenerationFilterHelp = "Filter generations by expression: fields(id <int>, label <string>, current <bool>, " +
	"files <int>, unique/shared <bytes[like 1B, 2KB, 3MiB]>, age <duration[like 2h, 3d, 4w, 5M, 1y]>); " +
	"operators(==,!=,<,>,<=,>=); helpers(glob(label, pattern), regex(label, pattern)); logic(and|or|not); " +
	"Example: --filter=\"not current and age > 30d and unique > 10MiB\""

// An age greater than a duration is a date before now minus that duration.
var generationDialect = filterexpr.NewDialect(map[string]string{"age": "date"}, "unique", "shared")

type GenerationFilter func(GenerationInfo) (bool, error)

// CompileGenerationFilter compiles a filter expression. An empty expression keeps everything.
func CompileGenerationFilter(query string) (GenerationFilter, error) {
	if strings.TrimSpace(query) == "" {
		return func(GenerationInfo) (bool, error) { return true, nil }, nil
	}

	prog, err := generationDialect.Compile(query, GenerationInfo{})
	if err != nil {
		return nil, err
	}
	return func(info GenerationInfo) (bool, error) {
		keep, err := filterexpr.Eval(prog, info)
		if err != nil {
			return false, fmt.Errorf("filter eval %q on generation %d: %w", query, info.ID, err)
		}
		return keep, nil
	}, nil
}
