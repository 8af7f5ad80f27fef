package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	sessionsLimit  int
	sessionsOffset int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage assessment sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		sessions, err := st.ListSessions(ctx, sessionsLimit, sessionsOffset)
		if err != nil {
			return eris.Wrap(err, "list sessions")
		}

		for _, s := range sessions {
			stage := "-"
			overall := "-"
			if s.Aggregate != nil {
				stage = s.Aggregate.StageID
				overall = fmt.Sprintf("%d", s.Aggregate.Overall)
			}
			fmt.Printf("%s\t%-30s\t%s\t%s\t%s\n",
				s.ID, s.Project.BrandName, overall, stage,
				s.UpdatedAt.Format("2006-01-02 15:04"),
			)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		sess, err := st.GetSession(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "get session %s", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sess)
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteSession(ctx, args[0]); err != nil {
			return eris.Wrapf(err, "delete session %s", args[0])
		}

		zap.L().Info("session deleted", zap.String("session", args[0]))
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().IntVar(&sessionsLimit, "limit", 50, "max sessions to list")
	sessionsListCmd.Flags().IntVar(&sessionsOffset, "offset", 0, "list offset")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}
