package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/reqdiff/internal/diff"
)

// diffReport is the JSON form of one request's comparison with a stub.
type diffReport struct {
	EntryID  string         `json:"entryId"`
	Method   string         `json:"method"`
	URL      string         `json:"url"`
	Matched  bool           `json:"matched"`
	Expected string         `json:"expected"`
	Actual   string         `json:"actual"`
	Sections []diff.Section `json:"sections"`
}

func newDiffCmd(root *rootOptions) *cobra.Command {
	var (
		stubs    stubInputs
		requests requestInputs
		stubID   string
		entryID  string
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show how requests differ from a stub",
		Long: `Render the expected and actual side of every attribute the stub
constrains, for each request. The text form is the assertion layout IDE
test runners show side by side:

   expected:<
  POST
  /orders
  > but was:<
  GET
  /orders
  >

Exits with status 1 when any request does not match.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.log()
			st, err := stubs.find(stubID, logger)
			if err != nil {
				return err
			}
			entries, err := requests.entries(logger)
			if err != nil {
				return err
			}

			var reports []diffReport
			differ := 0
			for _, e := range entries {
				if entryID != "" && e.ID != entryID {
					continue
				}
				d := diff.New(st.Pattern, e.ToRequest())
				if !d.Matched() {
					differ++
				}
				reports = append(reports, diffReport{
					EntryID:  e.ID,
					Method:   e.Method,
					URL:      e.URL,
					Matched:  d.Matched(),
					Expected: d.ExpectedBlock(),
					Actual:   d.ActualBlock(),
					Sections: d.Sections(),
				})
			}
			if entryID != "" && len(reports) == 0 {
				return fmt.Errorf("request %q not found", entryID)
			}

			w := cmd.OutOrStdout()
			err = root.printResult(w, reports, func() {
				for i, rep := range reports {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintln(w, headingColor.Sprintf("%s %s %s", rep.EntryID, rep.Method, rep.URL))
					if rep.Matched {
						fmt.Fprintf(w, "  matches stub %s\n", st.ID)
						continue
					}
					fmt.Fprintln(w, diff.JUnitStyleMessage(rep.Expected, rep.Actual))
				}
			})
			if err != nil {
				return err
			}
			if differ > 0 {
				return fmt.Errorf("%w (%d of %d)", ErrRequestsDiffer, differ, len(reports))
			}
			return nil
		},
	}

	stubs.register(cmd)
	requests.register(cmd)
	cmd.Flags().StringVar(&stubID, "stub", "", "ID of the stub to compare against")
	cmd.Flags().StringVar(&entryID, "entry", "", "Only compare the captured request with this ID")
	_ = cmd.MarkFlagRequired("stub")
	return cmd
}
