package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/creativehub/nexus/pkg/config"
	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatText OutputFormat = "text"
)

// Writer receives all command output
var Writer io.Writer = color.Output

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	if strings.EqualFold(config.GetString(config.KeyOutputFormat), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == string(FormatJSON) || format == string(FormatText)
}

// IsJSON reports whether commands should print raw JSON
func IsJSON() bool {
	return GetOutputFormat() == FormatJSON
}

// JSON prints v as indented JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(Writer, string(data))
	return err
}

// Field is one labelled value of a record
type Field struct {
	Label string
	Value interface{}
}

// PrintRecord prints labelled fields in order, or data as JSON in JSON mode
func PrintRecord(title string, data interface{}, fields []Field) error {
	if IsJSON() {
		return JSON(data)
	}
	if title != "" {
		color.New(color.Bold, color.FgCyan).Fprintln(Writer, title)
	}
	bold := color.New(color.Bold)
	for _, f := range fields {
		bold.Fprintf(Writer, "%s: ", f.Label)
		fmt.Fprintf(Writer, "%v\n", f.Value)
	}
	return nil
}

// PrintTable prints rows under headers, or data as JSON in JSON mode
func PrintTable(data interface{}, headers []string, rows [][]string) error {
	if IsJSON() {
		return JSON(data)
	}
	if len(rows) == 0 {
		PrintInfo("Nothing to show.")
		return nil
	}

	w := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)
	for i, h := range headers {
		bold.Fprint(w, h)
		if i < len(headers)-1 {
			fmt.Fprint(w, "\t")
		}
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(Writer, msg+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(Writer, "Error: "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(Writer, msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(Writer, "Warning: "+msg+"\n", args...)
}

// Truncate shortens s to max runes with an ellipsis
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
