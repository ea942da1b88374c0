package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unionhub/unionhub-api/internal/domain/biblestudy"
	"github.com/unionhub/unionhub-api/internal/services"
	"github.com/unionhub/unionhub-api/internal/validation"
)

func assignGroupsCmd() *cobra.Command {
	var (
		session  string
		location string
		size     int
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "assign-groups",
		Short: "Partition approved registrants of a session and location into groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := validation.ParseUUID(session, "session")
			if err != nil {
				return err
			}
			locationID, err := validation.ParseUUID(location, "location")
			if err != nil {
				return err
			}
			if size != 0 {
				if err := validation.ValidateGroupSize(size); err != nil {
					return err
				}
			}
			defaultStrategy, err := biblestudy.ParseStrategy(cfg.BibleStudy.Strategy)
			if err != nil {
				return err
			}

			container, err := openContainer()
			if err != nil {
				return err
			}
			defer container.Close()

			// no hub in the CLI, so nothing is announced
			svc := services.NewBibleStudyService(container.Registrations(), nil, cfg.BibleStudy.DefaultGroupSize, defaultStrategy)
			groups, err := svc.AssignGroups(cmd.Context(), services.AssignGroupsRequest{
				SessionID:  sessionID,
				LocationID: locationID,
				GroupSize:  size,
				Strategy:   strategy,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(out, "No approved registrants")
				return nil
			}
			for _, g := range groups {
				fmt.Fprintf(out, "Group %d (%d members)\n", g.Number, len(g.Members))
				for _, m := range g.Members {
					fmt.Fprintf(out, "  %s\n", m.UserID)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "session id")
	cmd.Flags().StringVar(&location, "location", "", "location id")
	cmd.Flags().IntVar(&size, "size", 0, "members per group (default from BIBLE_STUDY_GROUP_SIZE)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "balanced, round_robin or sequential")
	_ = cmd.MarkFlagRequired("session")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}
