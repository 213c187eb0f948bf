// Package common provides the result types shared between command handlers
// and the display layer.
package common

// ExecutionResult represents the outcome of a shea command.
type ExecutionResult struct {
	// ExitCode is the process status to exit with.
	ExitCode int
	// Output is rendered to the console when non-nil.
	Output *Output
}

// Output is structured command output.
type Output struct {
	Message string
	KV      []KV
	Table   *Table
}

// KV is a labelled value shown as "key: value".
type KV struct {
	Key   string
	Value string
}

// Table is a rectangular set of cells with a header row.
// Cells may carry ANSI styling; column widths are computed on the visible text.
type Table struct {
	Header []string
	Rows   [][]string
}
