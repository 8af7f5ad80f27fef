package export

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/brandscope/internal/model"
	"github.com/sells-group/brandscope/internal/rubric"
	"github.com/sells-group/brandscope/pkg/notion"
)

// NotionSink pushes assessment summaries into a Notion database. Optional:
// only constructed when a token and database id are configured.
type NotionSink struct {
	client notion.Client
	dbID   string
}

// NewNotionSink creates a sink targeting the given report database.
func NewNotionSink(client notion.Client, dbID string) *NotionSink {
	return &NotionSink{client: client, dbID: dbID}
}

// Push creates one database row summarizing the session's aggregate.
func (s *NotionSink) Push(ctx context.Context, sess *model.Session) error {
	if sess.Aggregate == nil {
		return eris.New("export: session has no aggregate to push")
	}

	stage := rubric.StageForScore(sess.Aggregate.Overall)

	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{Text: &notionapi.Text{Content: sess.Project.BrandName}},
			},
		},
		"Overall": notionapi.NumberProperty{
			Number: float64(sess.Aggregate.Overall),
		},
		"Stage": notionapi.SelectProperty{
			Select: notionapi.Option{Name: stage.Name},
		},
		"Business Model": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{Text: &notionapi.Text{Content: businessModelName(sess.Project.BusinessModel)}},
			},
		},
	}

	page, err := s.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(s.dbID),
		},
		Properties: props,
		Children:   summaryBlocks(sess),
	})
	if err != nil {
		return eris.Wrapf(err, "export: push session %s", sess.ID)
	}

	zap.L().Info("export: pushed to notion",
		zap.String("session", sess.ID),
		zap.String("page_id", string(page.ID)),
	)
	return nil
}

// summaryBlocks renders the per-attribute breakdown as page content.
func summaryBlocks(sess *model.Session) []notionapi.Block {
	var blocks []notionapi.Block
	for _, attr := range rubric.Attributes() {
		as, ok := sess.Aggregate.PerAttribute[attr.ID]
		if !ok {
			continue
		}
		text := fmt.Sprintf("%s: %d (%s)", attr.Name, as.Raw, as.Label)
		blocks = append(blocks, &notionapi.BulletedListItemBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeBulletedListItem,
			},
			BulletedListItem: notionapi.ListItem{
				RichText: []notionapi.RichText{
					{Text: &notionapi.Text{Content: text}},
				},
			},
		})
	}
	return blocks
}
