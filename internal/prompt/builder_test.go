package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brandscope/internal/model"
)

func testProject() model.Project {
	return model.Project{
		BrandName:     "Acme Robotics",
		WebsiteURL:    "https://acme.example",
		Industry:      "Industrial automation",
		BusinessModel: "b2b",
		Audience:      "Plant operations leaders",
	}
}

func TestBuild_WebsiteIncludesEvidence(t *testing.T) {
	ev := model.EvidenceBundle{
		Fields: map[string]string{
			"copy":         "We build robots that never sleep.",
			"observations": "Homepage loads fast, pricing page is hidden.",
		},
	}

	built := Build(testProject(), model.CategoryWebsite, ev)

	assert.Contains(t, built.Text, "Acme Robotics")
	assert.Contains(t, built.Text, "https://acme.example")
	assert.Contains(t, built.Text, "We build robots that never sleep.")
	assert.Contains(t, built.Text, "pricing page is hidden")
	assert.Contains(t, built.Text, "RATINGS:")
	assert.Contains(t, built.Text, "TOP 3 STRENGTHS:")
	assert.Contains(t, built.Text, "TOP 3 GAPS:")
	assert.Empty(t, built.Attachments)
}

func TestBuild_MissingFieldsGetPlaceholders(t *testing.T) {
	built := Build(testProject(), model.CategoryWebsite, model.EvidenceBundle{})

	assert.Contains(t, built.Text, "No page copy was provided")
	assert.Contains(t, built.Text, "The user recorded no observations about the website.")
	assert.NotContains(t, built.Text, "--- Key page copy (pasted by the user) ---\n\n")
}

func TestBuild_MissingProjectFieldsGetPlaceholders(t *testing.T) {
	built := Build(model.Project{}, model.CategorySocial, model.EvidenceBundle{})

	assert.Contains(t, built.Text, "(brand name not provided)")
	assert.Contains(t, built.Text, "(no website URL provided)")
	assert.Contains(t, built.Text, "(business model not specified)")
	assert.Contains(t, built.Text, "(audience not specified)")
}

func TestBuild_BusinessModelEmphasis(t *testing.T) {
	// b2b weights Influence & Narrative and Trust above 1.0; the prompt
	// should name them as carrying extra weight.
	built := Build(testProject(), model.CategoryWebsite, model.EvidenceBundle{})

	assert.Contains(t, built.Text, "carry extra weight")
	assert.Contains(t, built.Text, "Influence & Narrative")
	assert.Contains(t, built.Text, "Trust")
}

func TestBuild_CategoryAttributesListed(t *testing.T) {
	tests := []struct {
		category model.Category
		want     []string
		absent   string
	}{
		{model.CategoryWebsite, []string{"AWAKE", "ADEPT", "ARTFUL", "ASTUTE"}, "ATTENTIVE"},
		{model.CategorySocial, []string{"ATTENTIVE", "AUTHENTIC"}, "ARTFUL"},
		{model.CategoryAIReputation, []string{"ASSURED", "AHEAD"}, "ADEPT"},
		{model.CategoryEarnedMedia, []string{"ASSURED", "AWAKE", "AHEAD"}, "AUTHENTIC"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			built := Build(testProject(), tt.category, model.EvidenceBundle{})
			for _, id := range tt.want {
				assert.Contains(t, built.Text, "("+id+")")
			}
			assert.NotContains(t, built.Text, "("+tt.absent+")")
		})
	}
}

func TestBuild_RatingsSkeletonUsesDisplayNames(t *testing.T) {
	built := Build(testProject(), model.CategorySocial, model.EvidenceBundle{})

	assert.Contains(t, built.Text, "Trust: <number>/100 - <justification>")
	assert.Contains(t, built.Text, "Authenticity: <number>/100 - <justification>")
}

func TestBuild_AttachmentsPreserveOrder(t *testing.T) {
	ev := model.EvidenceBundle{
		Images: []model.ImageAttachment{
			{MediaType: "image/jpeg", Filename: "home.jpg", Data: []byte{1}},
			{MediaType: "image/jpeg", Filename: "about.jpg", Data: []byte{2}},
		},
	}

	built := Build(testProject(), model.CategoryWebsite, ev)
	require.Len(t, built.Attachments, 2)
	assert.Equal(t, "home.jpg", built.Attachments[0].Filename)
	assert.Equal(t, "about.jpg", built.Attachments[1].Filename)

	// The returned slice is a copy; mutating it must not touch the bundle.
	built.Attachments[0].Filename = "mutated.jpg"
	assert.Equal(t, "home.jpg", ev.Images[0].Filename)
}

func TestBuild_Deterministic(t *testing.T) {
	ev := model.EvidenceBundle{Fields: map[string]string{"profiles": "@acme"}}
	a := Build(testProject(), model.CategorySocial, ev)
	b := Build(testProject(), model.CategorySocial, ev)
	assert.Equal(t, a.Text, b.Text)
}
