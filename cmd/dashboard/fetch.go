package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"marketDash/internal/modules/dashboard/application/usecase"
	"marketDash/internal/modules/dashboard/domain"
	"marketDash/internal/shared/normalization"
)

type fetchOptions struct {
	dateFrom string
	dateTo   string
	limit    int
	filters  []string
	sort     string
	order    string
	page     int
	output   string
	columns  []string
}

func newFetchCmd() *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch <resource>",
		Short: "Fetch one resource and print the selected page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := opts.criteriaPatch(cmd)
			if err != nil {
				return err
			}

			dashboard, err := newDashboard()
			if err != nil {
				return err
			}
			store, err := dashboard.Store(args[0])
			if err != nil {
				return err
			}

			store.ApplyFilters(patch)
			state := store.Fetch(cmd.Context())
			if state.LastError != "" {
				return fmt.Errorf("%s: %s", store.Resource().Name, state.LastError)
			}
			state = navigate(store, opts)

			switch opts.output {
			case "json":
				return writeJSON(cmd.OutOrStdout(), state)
			case "table":
				writeTable(cmd.OutOrStdout(), state, opts.columns)
				return nil
			default:
				return fmt.Errorf("unsupported output %q (use table or json)", opts.output)
			}
		},
	}

	cmd.Flags().StringVar(&opts.dateFrom, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.dateTo, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Rows per page")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "Field filter as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "Field to sort the page by")
	cmd.Flags().StringVar(&opts.order, "order", "asc", "Sort direction (asc or desc)")
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page to print")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "Output format (table or json)")
	cmd.Flags().StringSliceVar(&opts.columns, "columns", nil, "Columns to print in table output")

	return cmd
}

// criteriaPatch turns the flags the user set into a patch over the default criteria.
func (o fetchOptions) criteriaPatch(cmd *cobra.Command) (domain.CriteriaPatch, error) {
	var patch domain.CriteriaPatch
	if cmd.Flags().Changed("from") {
		patch.DateFrom = &o.dateFrom
	}
	if cmd.Flags().Changed("to") {
		patch.DateTo = &o.dateTo
	}
	if cmd.Flags().Changed("limit") {
		patch.Limit = &o.limit
	}
	filters, err := parseFilters(o.filters)
	if err != nil {
		return domain.CriteriaPatch{}, err
	}
	patch.Filters = filters
	return patch, nil
}

// parseFilters reads repeated key=value pairs. The value may be empty or contain "=".
func parseFilters(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(raw))
	for _, pair := range raw {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q (expected key=value)", pair)
		}
		filters[key] = value
	}
	return filters, nil
}

// navigate applies the sort and walks forward to the requested page, stopping at the last one.
func navigate(store *usecase.Store, opts fetchOptions) domain.State {
	state := store.State()
	if field := strings.TrimSpace(opts.sort); field != "" {
		state = store.Sort(field, domain.ParseDirection(opts.order))
	}
	for state.CurrentPage < opts.page && state.CurrentPage < state.TotalPages {
		state = store.NextPage()
	}
	return state
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeTable(w io.Writer, state domain.State, columns []string) {
	if len(columns) == 0 {
		columns = recordColumns(state.Records)
	}
	if len(state.Records) == 0 || len(columns) == 0 {
		fmt.Fprintln(w, "No records found.")
	} else {
		rows := make([][]string, 0, len(state.Records))
		for _, record := range state.Records {
			row := make([]string, len(columns))
			for i, column := range columns {
				row[i] = normalization.Stringify(record.Value(column))
			}
			rows = append(rows, row)
		}
		printAligned(w, columns, rows)
	}
	fmt.Fprintf(w, "\n%s: page %d/%d, %d filtered of %d fetched (server total %d)\n",
		state.Resource, state.CurrentPage, state.TotalPages, state.FilteredCount, state.FetchedCount, state.ServerTotal)
}

// recordColumns returns the union of the record keys with "date" first.
func recordColumns(records []domain.Record) []string {
	seen := make(map[string]struct{})
	columns := make([]string, 0)
	for _, record := range records {
		for key := range record {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}
	slices.SortFunc(columns, func(a, b string) int {
		switch {
		case a == domain.DateField:
			return -1
		case b == domain.DateField:
			return 1
		}
		return strings.Compare(a, b)
	})
	return columns
}

func printAligned(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, column := range header {
		widths[i] = len([]rune(column))
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len([]rune(cell)))
		}
	}

	line := func(cells []string) {
		padded := make([]string, len(cells))
		for i, cell := range cells {
			padded[i] = cell + strings.Repeat(" ", widths[i]-len([]rune(cell)))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(padded, "  "), " "))
	}

	upper := make([]string, len(header))
	for i, column := range header {
		upper[i] = strings.ToUpper(column)
	}
	line(upper)
	total := 0
	for _, width := range widths {
		total += width + 2
	}
	fmt.Fprintln(w, strings.Repeat("-", max(total-2, 0)))
	for _, row := range rows {
		line(row)
	}
}

func newFetchAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-all",
		Short: "Fetch every resource concurrently and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboard, err := newDashboard()
			if err != nil {
				return err
			}
			states, err := dashboard.FetchAll(cmd.Context())
			if err != nil {
				return err
			}
			writeSummary(cmd.OutOrStdout(), dashboard.Resources(), states)
			return nil
		},
	}
}

func writeSummary(w io.Writer, names []string, states map[string]domain.State) {
	fmt.Fprintf(w, "%-12s %-8s %-8s %-8s %-6s %s\n", "RESOURCE", "FETCHED", "TOTAL", "FILTERED", "PAGES", "ERROR")
	fmt.Fprintln(w, strings.Repeat("-", 64))
	for _, name := range names {
		state := states[name]
		errText := state.LastError
		if errText == "" {
			errText = "-"
		}
		fmt.Fprintf(w, "%-12s %-8d %-8d %-8d %-6d %s\n", name, state.FetchedCount, state.ServerTotal, state.FilteredCount, state.TotalPages, errText)
	}
}
