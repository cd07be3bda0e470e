package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/poller"
)

// cycleOutcomes — порядок исходов в сводке тика.
var cycleOutcomes = []poller.Outcome{
	poller.OutcomeCommitted,
	poller.OutcomeDryRun,
	poller.OutcomeNotDue,
	poller.OutcomeLocked,
	poller.OutcomeLockError,
	poller.OutcomeEvaluateFailed,
	poller.OutcomeCommitFailed,
}

// Output управляет форматированием вывода CLI.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений
}

// NewOutput создаёт Output в stdout/stderr. Если jsonMode=true, данные выводятся в JSON.
func NewOutput(jsonMode bool) *Output {
	return NewOutputTo(jsonMode, os.Stdout, os.Stderr)
}

// NewOutputTo создаёт Output с заданными writer'ами.
func NewOutputTo(jsonMode bool, w, errW io.Writer) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        w,
		errW:     errW,
	}
}

// Print выводит данные: таблицу или JSON в зависимости от режима.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	o.Table(headers, rows)
}

// Table выводит данные в виде таблицы через tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	// Заголовки
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	// Разделитель
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	// Строки данных
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// Cycle выводит результат тика: строка на партицию и сводка по исходам в stderr.
// Партиции с ошибкой помечаются "!".
func (o *Output) Cycle(res poller.CycleResult) {
	if o.jsonMode {
		o.JSON(res)
		return
	}

	rows := make([][]string, len(res.Partitions))
	for i, p := range res.Partitions {
		mark := ""
		if p.Outcome.IsFailure() {
			mark = "!"
		}
		rows[i] = []string{mark, p.Partition, string(p.Outcome), p.Error}
	}
	o.Table([]string{"", "PARTITION", "OUTCOME", "ERROR"}, rows)

	var parts []string
	for _, outcome := range cycleOutcomes {
		if n := res.Count(outcome); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, outcome))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "no partitions")
	}
	fmt.Fprintf(o.errW, "%d partition(s) in %s: %s\n",
		len(res.Partitions), res.Duration.Round(time.Millisecond), strings.Join(parts, ", "))
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, "Error: "+msg)
}
