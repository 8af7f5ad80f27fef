package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/brandscope/internal/imaging"
	"github.com/sells-group/brandscope/internal/model"
)

var (
	assessSessionID string
	assessBrand     string
	assessURL       string
	assessBizModel  string
	assessCategory  string
	assessFields    map[string]string
	assessImages    []string
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run one category analysis for a brand",
	Long:  "Creates a session (or reuses one via --session), attaches the given evidence, and runs the category analysis.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		wiz, st, err := initWizard(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		cat := model.Category(assessCategory)

		sessionID := assessSessionID
		if sessionID == "" {
			sess, err := wiz.CreateSession(ctx, model.Project{
				BrandName:     assessBrand,
				WebsiteURL:    assessURL,
				BusinessModel: assessBizModel,
			})
			if err != nil {
				return eris.Wrap(err, "create session")
			}
			sessionID = sess.ID
			zap.L().Info("session created", zap.String("session", sessionID))
		}

		if len(assessFields) > 0 {
			if _, err := wiz.SaveEvidence(ctx, sessionID, cat, assessFields); err != nil {
				return eris.Wrap(err, "save evidence")
			}
		}

		if len(assessImages) > 0 {
			items := make([]imaging.BatchItem, 0, len(assessImages))
			for _, path := range assessImages {
				data, err := os.ReadFile(path)
				if err != nil {
					return eris.Wrapf(err, "read image %s", path)
				}
				items = append(items, imaging.BatchItem{
					Filename: filepath.Base(path),
					Data:     data,
				})
			}
			_, failures, err := wiz.AddImages(ctx, sessionID, cat, items)
			if err != nil {
				return eris.Wrap(err, "add images")
			}
			for _, f := range failures {
				zap.L().Warn("image skipped", zap.String("file", f.Filename), zap.String("reason", f.Error))
			}
		}

		result, err := wiz.RunCategory(ctx, sessionID, cat)
		if err != nil {
			return eris.Wrapf(err, "run %s", cat)
		}

		sess, err := wiz.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}

		zap.L().Info("category analysis complete",
			zap.String("session", sessionID),
			zap.String("category", assessCategory),
			zap.Int("scores", len(result.Scores)),
			zap.Int("overall", sess.Aggregate.Overall),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"session":   sessionID,
			"result":    result,
			"aggregate": sess.Aggregate,
		})
	},
}

func init() {
	assessCmd.Flags().StringVar(&assessSessionID, "session", "", "existing session id (created if empty)")
	assessCmd.Flags().StringVar(&assessBrand, "brand", "", "brand name (required for a new session)")
	assessCmd.Flags().StringVar(&assessURL, "url", "", "brand website URL")
	assessCmd.Flags().StringVar(&assessBizModel, "business-model", "b2b", "business model archetype")
	assessCmd.Flags().StringVar(&assessCategory, "category", "website", "assessment category: website, social, ai-reputation, earned-media")
	assessCmd.Flags().StringToStringVar(&assessFields, "field", nil, "evidence field key=value (repeatable)")
	assessCmd.Flags().StringSliceVar(&assessImages, "image", nil, "screenshot path (repeatable, primary first)")
	rootCmd.AddCommand(assessCmd)
}
