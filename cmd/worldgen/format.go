package main

import (
	"fmt"
	"sort"

	"github.com/tomster12/growth-sub000/internal/index"
	"github.com/tomster12/growth-sub000/pkg/validation"
	"github.com/tomster12/growth-sub000/pkg/world"
)

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  [%s] %s\n", e.Level, e.Message)
			if e.Path != "" {
				fmt.Printf("    -> %s = %v\n", e.Path, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Printf("    expected: %s\n", e.Expected)
			}
			for _, s := range e.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  [%s] %s\n", w.Level, w.Message)
			if w.Path != "" {
				fmt.Printf("    -> %s = %v\n", w.Path, w.ActualValue)
			}
			for _, s := range w.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printWorldSummary(s world.Summary) {
	fmt.Printf("World %s (seed %d, attempt %d)\n", s.ID, s.Seed, s.Attempt)
	fmt.Println("==========================================")
	fmt.Printf("  Sites:            %d (%d interior)\n", s.Sites, s.InteriorSites)
	fmt.Printf("  Boundary edges:   %d\n", s.BoundaryEdges)
	fmt.Printf("  Boundary length:  %.2f\n", s.BoundaryLength)
	fmt.Println()

	fmt.Printf("%-12s %8s %8s %12s\n", "Run", "Start", "End", "Length")
	fmt.Printf("%-12s %8s %8s %12s\n", "------------", "--------", "--------", "------------")
	for _, r := range s.Runs {
		fmt.Printf("%-12s %8d %8d %12.2f\n", r.ID, r.Start, r.End, r.Length)
	}
	fmt.Println()

	ids := make([]string, 0, len(s.SiteBiomes))
	for id := range s.SiteBiomes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	fmt.Println("Site biomes")
	fmt.Println("-----------")
	for _, id := range ids {
		label := id
		if label == "" {
			label = "(none)"
		}
		fmt.Printf("  %-12s %6d\n", label, s.SiteBiomes[id])
	}
}

func printRuns(runs []index.Run) {
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return
	}
	fmt.Printf("%-36s %-20s %8s %3s %-8s %-7s %6s %10s\n",
		"ID", "Created", "Seed", "#", "Stage", "Status", "Sites", "Elapsed")
	for _, r := range runs {
		fmt.Printf("%-36s %-20s %8d %3d %-8s %-7s %6d %8dms\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Seed, r.Attempt,
			r.Stage, r.Status, r.Sites, r.ElapsedMS)
		if r.Error != "" {
			fmt.Printf("    %s\n", r.Error)
		}
	}
}
