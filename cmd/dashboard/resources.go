package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"marketDash/internal/shared/normalization"
)

func newResourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the resources the dashboard can fetch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := loadResources()
			if err != nil {
				return err
			}

			names := make([]string, 0, len(resources))
			for name := range resources {
				names = append(names, name)
			}
			known := normalization.KnownResources()
			slices.SortFunc(names, func(a, b string) int {
				ai, bi := slices.Index(known, a), slices.Index(known, b)
				if ai < 0 {
					ai = len(known)
				}
				if bi < 0 {
					bi = len(known)
				}
				if ai != bi {
					return ai - bi
				}
				return strings.Compare(a, b)
			})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %-12s %-14s %-8s %s\n", "NAME", "PATH", "WINDOW", "LIMIT", "FILTERS")
			fmt.Fprintln(out, strings.Repeat("-", 72))
			for _, name := range names {
				resource := resources[name]
				filters := make([]string, 0, len(resource.TextFilters)+len(resource.ExactFilters))
				for key := range resource.TextFilters {
					filters = append(filters, key)
				}
				for key := range resource.ExactFilters {
					filters = append(filters, key+"=")
				}
				slices.Sort(filters)
				fmt.Fprintf(out, "%-12s %-12s %-14s %-8d %s\n", name, resource.Path, resource.DateWindow, resource.InitialLimit, strings.Join(filters, ","))
			}
			return nil
		},
	}
}
