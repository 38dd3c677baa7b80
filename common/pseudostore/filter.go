package pseudostore

import (
	"fmt"
	"time"

	"github.com/bootusage/bootusage/common/filterexpr"
)

// FileInfo is the environment pseudo-store file filters are evaluated against.
type FileInfo struct {
	Path   string    `expr:"path"`   // Full file path
	Name   string    `expr:"name"`   // Flattened file name
	Layout string    `expr:"layout"` // Pseudo-store layout the file was found in
	Size   int64     `expr:"size"`   // File size in bytes
	Mtime  time.Time `expr:"mtime"`  // Modification time
	Btime  time.Time `expr:"btime"`  // Creation time (modification time if unavailable)
	Refs   int       `expr:"refs"`   // Number of generations referencing the file
}

func (e Entry) FileInfo(refs int) FileInfo {
	return FileInfo{
		Path:   e.Path,
		Name:   e.Name,
		Layout: e.Layout,
		Size:   e.Size,
		Mtime:  e.Mtime,
		Btime:  e.Btime,
		Refs:   refs,
	}
}

var fileDialect = filterexpr.NewDialect(map[string]string{"mtime": "mtime", "btime": "btime"}, "size")

const FilterFilesHelp = "Filter pseudo-store files by expression: fields(name/path/layout <string>, refs <int>, " +
	"mtime/btime <duration[like 1s, 2m, 3h, 4d, 5M, 10y]>, size <bytes[like 1B, 2KB, 3MiB, 4GiB]>); " +
	"operators(==,!=,<,>,<=,>=); helpers(glob([name|path], pattern), regex([name|path], pattern)); " +
	"logic(and|or|not); Example: --filter=\"refs == 0 and btime > 30d and glob(name, '*-bzImage')\""

type FileInfoFilter func(FileInfo) (bool, error)

// CompileFilter turns a DSL expression into a filter function.
func CompileFilter(query string) (FileInfoFilter, error) {
	prog, err := fileDialect.Compile(query, FileInfo{})
	if err != nil {
		return nil, err
	}
	return func(fi FileInfo) (bool, error) {
		keep, err := filterexpr.Eval(prog, fi)
		if err != nil {
			return false, fmt.Errorf("filter eval %q on %s: %w", query, fi.Path, err)
		}
		return keep, nil
	}, nil
}

// ApplyFilter returns whether the file should be kept. If filter==nil then (true, nil) will be
// returned.
func ApplyFilter(fi FileInfo, filter FileInfoFilter) (keep bool, err error) {
	if filter == nil {
		return true, nil
	}
	if keep, err = filter(fi); err != nil {
		return false, fmt.Errorf("unable to apply filter: %w", err)
	}
	return
}
