package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/reqdiff/pkg/verification"
)

func newVerifyCmd(root *rootOptions) *cobra.Command {
	var (
		stubs      stubInputs
		requests   requestInputs
		stubID     string
		exactly    int
		atLeast    int
		atMost     int
		never      bool
		nearMisses int
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Assert how many requests satisfy a stub",
		Long: `Count the requests that satisfy a stub and check the count. Returns exit
code 0 on pass and exit code 1 on failure, suitable for CI scripts.

When too few requests match, the closest requests are shown with their
diffs against the stub.

At least one assertion flag is required.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Build criteria from flags
			var criteria verification.Criteria
			criteria.Never = never
			if cmd.Flags().Changed("exactly") {
				criteria.Exactly = &exactly
			}
			if cmd.Flags().Changed("at-least") {
				criteria.AtLeast = &atLeast
			}
			if cmd.Flags().Changed("at-most") {
				criteria.AtMost = &atMost
			}
			if err := criteria.Validate(); err != nil {
				return fmt.Errorf("%w (--exactly, --at-least, --at-most, --never)", err)
			}

			logger := root.log()
			st, err := stubs.find(stubID, logger)
			if err != nil {
				return err
			}
			store, err := requests.store(logger)
			if err != nil {
				return err
			}

			v := verification.New(logger, verification.WithNearMisses(nearMisses))
			res, err := v.VerifyStore(st.Pattern, criteria, store, nil)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			err = root.printResult(w, res, func() {
				if res.Passed {
					fmt.Fprintf(w, "%s: %s (received %d time(s))\n", passLabel(), res.Message, res.Actual)
					return
				}
				fmt.Fprintf(w, "%s: %s\n", failLabel(), res.Message)
				for _, nm := range res.NearMisses {
					fmt.Fprintf(w, "\n%s: %s\n", headingColor.Sprintf("Closest request %s %s %s", nm.EntryID, nm.Method, nm.URL), nm.Reason)
					fmt.Fprintln(w, nm.Diff)
				}
			})
			if err != nil {
				return err
			}

			// Exit with non-zero code on failure for CI usage
			if !res.Passed {
				return ErrVerificationFailed
			}
			return nil
		},
	}

	stubs.register(cmd)
	requests.register(cmd)
	f := cmd.Flags()
	f.StringVar(&stubID, "stub", "", "ID of the stub whose pattern is verified")
	f.IntVar(&exactly, "exactly", 0, "Require exactly N matching requests")
	f.IntVar(&atLeast, "at-least", 0, "Require at least N matching requests")
	f.IntVar(&atMost, "at-most", 0, "Allow at most N matching requests")
	f.BoolVar(&never, "never", false, "Require that no request matches")
	f.IntVarP(&nearMisses, "near-misses", "n", verification.DefaultNearMisses, "Closest requests to show on failure")
	_ = cmd.MarkFlagRequired("stub")
	return cmd
}
