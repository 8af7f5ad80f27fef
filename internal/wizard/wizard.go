// Package wizard is the session controller: it owns the step-by-step
// assessment flow from evidence intake through model calls to the stored
// aggregate.
package wizard

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/brandscope/internal/config"
	"github.com/sells-group/brandscope/internal/engine"
	"github.com/sells-group/brandscope/internal/imaging"
	"github.com/sells-group/brandscope/internal/model"
	"github.com/sells-group/brandscope/internal/parser"
	"github.com/sells-group/brandscope/internal/prompt"
	"github.com/sells-group/brandscope/internal/rubric"
	"github.com/sells-group/brandscope/internal/session"
	"github.com/sells-group/brandscope/pkg/anthropic"
)

// Sentinel errors surfaced at the API boundary.
var (
	ErrAnalysisInFlight = eris.New("analysis already running for this category")
	ErrValidation       = eris.New("validation failed")
	ErrBadPassphrase    = eris.New("incorrect passphrase")
	ErrUnknownCategory  = eris.New("unknown category")
)

const systemPrompt = "You are a senior brand strategist. You assess brands rigorously against a fixed rubric, cite the supplied evidence, and never invent facts about the brand."

// Wizard coordinates one store, one model client, and the per-category
// in-flight guard.
type Wizard struct {
	store  session.Store
	guard  *session.Guard
	client anthropic.Client
	cfg    config.Config
}

// New creates a Wizard.
func New(store session.Store, guard *session.Guard, client anthropic.Client, cfg config.Config) *Wizard {
	return &Wizard{store: store, guard: guard, client: client, cfg: cfg}
}

// CreateSession validates the project and opens a new wizard session.
func (w *Wizard) CreateSession(ctx context.Context, project model.Project) (*model.Session, error) {
	if err := validateProject(project); err != nil {
		return nil, err
	}
	return w.store.CreateSession(ctx, project)
}

// UpdateProject replaces the session's project after validation.
func (w *Wizard) UpdateProject(ctx context.Context, sessionID string, project model.Project) (*model.Session, error) {
	if err := validateProject(project); err != nil {
		return nil, err
	}
	sess, err := w.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Project = project
	if err := w.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SaveEvidence merges free-text evidence fields into the category bundle.
func (w *Wizard) SaveEvidence(ctx context.Context, sessionID string, cat model.Category, fields map[string]string) (*model.Session, error) {
	if !model.ValidCategory(cat) {
		return nil, eris.Wrapf(ErrUnknownCategory, "%s", cat)
	}
	sess, err := w.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	bundle := sess.Evidence[cat]
	if bundle.Fields == nil {
		bundle.Fields = make(map[string]string)
	}
	for k, v := range fields {
		bundle.Fields[k] = v
	}
	if sess.Evidence == nil {
		sess.Evidence = make(map[model.Category]model.EvidenceBundle)
	}
	sess.Evidence[cat] = bundle

	if err := w.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ImageFailure reports one upload that could not be converted.
type ImageFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// AddImages compresses a batch of uploads and merges the successes into
// the category's evidence bundle in one save. Failures are isolated per
// file: a bad image is reported, the rest of the batch still lands.
func (w *Wizard) AddImages(ctx context.Context, sessionID string, cat model.Category, items []imaging.BatchItem) (*model.Session, []ImageFailure, error) {
	if !model.ValidCategory(cat) {
		return nil, nil, eris.Wrapf(ErrUnknownCategory, "%s", cat)
	}
	sess, err := w.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	results := imaging.CompressBatch(ctx, items)

	var failures []ImageFailure
	bundle := sess.Evidence[cat]
	for i, res := range results {
		if res.Err != nil {
			failures = append(failures, ImageFailure{
				Filename: items[i].Filename,
				Error:    res.Err.Error(),
			})
			continue
		}
		bundle.Images = append(bundle.Images, res.Attachment)
	}
	if sess.Evidence == nil {
		sess.Evidence = make(map[model.Category]model.EvidenceBundle)
	}
	sess.Evidence[cat] = bundle

	if err := w.store.SaveSession(ctx, sess); err != nil {
		return nil, failures, err
	}

	zap.L().Info("wizard: images added",
		zap.String("session", sessionID),
		zap.String("category", string(cat)),
		zap.Int("added", len(items)-len(failures)),
		zap.Int("failed", len(failures)),
	)
	return sess, failures, nil
}

// RunCategory performs one category analysis: prompt, model call, parse,
// persist, re-aggregate. At most one run per session+category is in
// flight; a second trigger returns ErrAnalysisInFlight. The in-flight
// flag always clears, including on model failure, so the user can
// re-trigger manually.
func (w *Wizard) RunCategory(ctx context.Context, sessionID string, cat model.Category) (*model.CategoryResult, error) {
	if !model.ValidCategory(cat) {
		return nil, eris.Wrapf(ErrUnknownCategory, "%s", cat)
	}
	if !w.guard.Begin(sessionID, cat) {
		return nil, ErrAnalysisInFlight
	}
	defer w.guard.End(sessionID, cat)

	sess, err := w.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	built := prompt.Build(sess.Project, cat, sess.Evidence[cat])

	attachments := make([]anthropic.Attachment, len(built.Attachments))
	for i, img := range built.Attachments {
		attachments[i] = anthropic.Attachment{MediaType: img.MediaType, Data: img.Data}
	}

	temp := w.cfg.Anthropic.Temperature
	start := time.Now()
	resp, err := w.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       w.cfg.Anthropic.Model,
		MaxTokens:   w.cfg.Anthropic.MaxTokens,
		System:      systemPrompt,
		Prompt:      built.Text,
		Attachments: attachments,
		Temperature: &temp,
	})
	if err != nil {
		zap.L().Warn("wizard: category run failed",
			zap.String("session", sessionID),
			zap.String("category", string(cat)),
			zap.Error(err),
		)
		return nil, eris.Wrapf(err, "wizard: run %s", cat)
	}

	scores := parser.Parse(resp.Text)
	strengths, gaps := parser.ParseHighlights(resp.Text)

	result := model.CategoryResult{
		Category:  cat,
		Narrative: resp.Text,
		Scores:    scores,
		Strengths: strengths,
		Gaps:      gaps,
		TokenUsage: model.TokenUsage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			Cost:         resp.Usage.EstimateCost(w.cfg.Anthropic.Model),
		},
		Duration: time.Since(start).Milliseconds(),
		RanAt:    start.UTC(),
	}
	resp.Usage.LogCost(w.cfg.Anthropic.Model, string(cat))

	if sess.Results == nil {
		sess.Results = make(map[model.Category]model.CategoryResult)
	}
	sess.Results[cat] = result
	w.recomputeAggregate(sess)

	if err := w.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	zap.L().Info("wizard: category run complete",
		zap.String("session", sessionID),
		zap.String("category", string(cat)),
		zap.Int("scores", len(scores)),
		zap.Int("overall", sess.Aggregate.Overall),
	)
	return &result, nil
}

// recomputeAggregate replaces the session aggregate wholesale from the
// settled category results.
func (w *Wizard) recomputeAggregate(sess *model.Session) {
	bm, ok := rubric.BusinessModelByID(sess.Project.BusinessModel)
	if !ok {
		// Neutral weights when the archetype is somehow unset.
		bm = rubric.BusinessModel{ID: sess.Project.BusinessModel}
	}
	agg := engine.Aggregate(sess.Results, bm, time.Now())
	sess.Aggregate = &agg
}

// GetSession loads a session.
func (w *Wizard) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return w.store.GetSession(ctx, sessionID)
}

// Unlock checks the shared passphrase and persists the unlocked flag.
func (w *Wizard) Unlock(ctx context.Context, sessionID, passphrase string) error {
	if subtle.ConstantTimeCompare([]byte(passphrase), []byte(w.cfg.Gate.Passphrase)) != 1 {
		return ErrBadPassphrase
	}
	sess, err := w.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.Unlocked = true
	return w.store.SaveSession(ctx, sess)
}

func validateProject(p model.Project) error {
	if p.BrandName == "" {
		return eris.Wrap(ErrValidation, "brand name is required")
	}
	if _, ok := rubric.BusinessModelByID(p.BusinessModel); !ok {
		return eris.Wrapf(ErrValidation, "unknown business model %q", p.BusinessModel)
	}
	return nil
}
