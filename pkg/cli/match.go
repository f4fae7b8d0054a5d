package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/reqdiff/internal/diff"
	"github.com/getmockd/reqdiff/internal/matching"
	"github.com/getmockd/reqdiff/pkg/cli/internal/output"
)

// matchReport is the JSON form of one request's match outcome.
type matchReport struct {
	EntryID    string          `json:"entryId"`
	Method     string          `json:"method"`
	URL        string          `json:"url"`
	StubID     string          `json:"stubId,omitempty"`
	NearMisses []nearMissEntry `json:"nearMisses,omitempty"`
}

type nearMissEntry struct {
	StubID          string  `json:"stubId"`
	Name            string  `json:"name,omitempty"`
	MatchPercentage int     `json:"matchPercentage"`
	Reason          string  `json:"reason"`
	Diff            string  `json:"diff,omitempty"`
	Distance        float64 `json:"distance"`
}

func newMatchCmd(root *rootOptions) *cobra.Command {
	var (
		stubs      stubInputs
		requests   requestInputs
		nearMisses int
		showDiff   bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find the stub that serves each request",
		Long: `Match every request against the loaded stubs. The highest priority
enabled stub that matches wins; equal priorities go to the stub declared
first. Requests no stub matches are listed with their closest stubs.

Exits with status 1 when any request is unmatched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.log()
			collection, err := stubs.load(logger)
			if err != nil {
				return err
			}
			entries, err := requests.entries(logger)
			if err != nil {
				return err
			}

			reports := make([]matchReport, 0, len(entries))
			unmatched := 0
			for _, e := range entries {
				r := e.ToRequest()
				res := collection.Match(r, nearMisses)
				rep := matchReport{EntryID: e.ID, Method: e.Method, URL: e.URL}
				if res.Stub != nil {
					rep.StubID = res.Stub.ID
				} else {
					unmatched++
					rep.NearMisses = nearMissEntries(res.NearMisses, showDiff)
				}
				reports = append(reports, rep)
			}

			out := cmd.OutOrStdout()
			err = root.printResult(out, reports, func() {
				printMatchReports(cmd, reports)
			})
			if err != nil {
				return err
			}
			if unmatched > 0 {
				return fmt.Errorf("%w (%d of %d)", ErrNoMatch, unmatched, len(entries))
			}
			return nil
		},
	}

	stubs.register(cmd)
	requests.register(cmd)
	cmd.Flags().IntVarP(&nearMisses, "near-misses", "n", 3, "Closest stubs to show for an unmatched request")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Show the diff against each near miss")
	return cmd
}

func nearMissEntries(misses []matching.NearMiss, withDiff bool) []nearMissEntry {
	out := make([]nearMissEntry, 0, len(misses))
	for _, nm := range misses {
		e := nearMissEntry{
			StubID:          nm.ID,
			Name:            nm.Name,
			MatchPercentage: nm.MatchPercentage,
			Reason:          nm.Reason,
			Distance:        nm.Distance,
		}
		if withDiff {
			e.Diff = diff.FromVerdicts(nm.Verdicts).String()
		}
		out = append(out, e)
	}
	return out
}

func printMatchReports(cmd *cobra.Command, reports []matchReport) {
	w := cmd.OutOrStdout()
	tw := output.Table(w)
	fmt.Fprintln(tw, "REQUEST\tMETHOD\tURL\tSTUB")
	for _, rep := range reports {
		stubID := rep.StubID
		if stubID == "" {
			stubID = "(no match)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rep.EntryID, rep.Method, output.Truncate(rep.URL, 60), stubID)
	}
	_ = tw.Flush()

	for _, rep := range reports {
		if rep.StubID != "" {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", headingColor.Sprintf("%s %s %s", rep.EntryID, rep.Method, rep.URL))
		if len(rep.NearMisses) == 0 {
			fmt.Fprintln(w, warnColor.Sprint("  No stub came close."))
			continue
		}
		for _, nm := range rep.NearMisses {
			fmt.Fprintf(w, "  %s (%d%% match): %s\n", nm.StubID, nm.MatchPercentage, nm.Reason)
			if nm.Diff != "" {
				fmt.Fprintln(w, nm.Diff)
			}
		}
	}
}
