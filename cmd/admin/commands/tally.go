package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unionhub/unionhub-api/internal/services"
	"github.com/unionhub/unionhub-api/internal/validation"
)

func tallyCmd() *cobra.Command {
	var (
		electionFlag string
		publish      bool
	)

	cmd := &cobra.Command{
		Use:   "tally",
		Short: "Print the nomination tally of an election",
		RunE: func(cmd *cobra.Command, args []string) error {
			electionID, err := validation.ParseUUID(electionFlag, "election")
			if err != nil {
				return err
			}

			container, err := openContainer()
			if err != nil {
				return err
			}
			defer container.Close()

			svc := services.NewElectionService(container.Elections(), container.Nominations(), container.ElectionResults(), nil)
			report, err := svc.Tally(cmd.Context(), electionID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", report.Election.Name, report.Election.Stage)
			fmt.Fprintf(out, "nominations: %d  nominators: %d  nominees: %d  ignored: %d\n",
				report.Tally.TotalNominations, report.Tally.DistinctNominators, report.Tally.DistinctNominees, report.Ignored)
			for _, p := range report.Ordered {
				fmt.Fprintf(out, "\n%s\n", p.Position)
				for _, n := range p.Nominees {
					fmt.Fprintf(out, "  %2d. %s  %d\n", n.Rank, n.NomineeID, n.VoteCount)
				}
			}

			if publish {
				result, err := svc.PublishResults(cmd.Context(), electionID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nPublished results at %s\n", result.PublishedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&electionFlag, "election", "", "election id")
	cmd.Flags().BoolVar(&publish, "publish", false, "store the tally as the final result and close the election")
	_ = cmd.MarkFlagRequired("election")
	return cmd
}
