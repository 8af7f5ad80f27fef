package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/brandscope/internal/export"
	"github.com/sells-group/brandscope/pkg/notion"
)

var (
	exportFormat string
	exportOut    string
	exportNotion bool
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a stored assessment",
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

		if exportNotion {
			if cfg.Notion.Token == "" || cfg.Notion.ReportDB == "" {
				return eris.New("notion token and report_db must be configured")
			}
			sink := export.NewNotionSink(notion.NewClient(cfg.Notion.Token), cfg.Notion.ReportDB)
			if err := sink.Push(ctx, sess); err != nil {
				return err
			}
		}

		out := exportOut
		if out == "" {
			out = "assessment." + exportFormat
		}
		f, err := os.Create(out)
		if err != nil {
			return eris.Wrapf(err, "create %s", out)
		}
		defer f.Close()

		switch exportFormat {
		case "xlsx":
			err = export.WriteXLSX(f, sess)
		case "md", "markdown":
			err = export.WriteMarkdown(f, sess)
		default:
			return eris.Errorf("unknown format %q (want xlsx or md)", exportFormat)
		}
		if err != nil {
			return eris.Wrapf(err, "write %s", out)
		}

		zap.L().Info("export written",
			zap.String("session", args[0]),
			zap.String("file", out),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "export format: xlsx or md")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default assessment.<format>)")
	exportCmd.Flags().BoolVar(&exportNotion, "notion", false, "also push a summary row to the configured Notion database")
	rootCmd.AddCommand(exportCmd)
}
