package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/opra"
	"google.golang.org/genai"
)

var _ opra.SectionClassifier = (*Classifier)(nil)

// Classifier implements opra.SectionClassifier with structured Gemini output.
type Classifier struct {
	gen generator
}

// NewClassifier creates a new Classifier.
func NewClassifier(client *genai.Client, opts ...Option) *Classifier {
	return &Classifier{gen: newGenerator(client, DefaultModel, opts)}
}

// ClassifySection classifies one ordinance section against the categories.
func (c *Classifier) ClassifySection(ctx context.Context, content string, categories []opra.Category) (*opra.SectionAnalysis, error) {
	if strings.TrimSpace(content) == "" {
		return nil, opra.Errorf(opra.EINVALID, "section content required")
	}
	if len(categories) == 0 {
		return nil, opra.Errorf(opra.EINVALID, "categories required")
	}

	result, err := c.gen.generate(ctx, "classify section", BuildClassifierPrompt(content, categories), ClassifierConfig())
	if err != nil {
		return nil, err
	}
	return ParseSectionAnalysis(result.Text(), categories)
}

// ClassifierConfig returns the GenerateContentConfig for section classification.
func ClassifierConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You analyze New Jersey rent control ordinances and identify which public records categories each section creates records for.",
			}},
		},
		Temperature:      float32Ptr(0.2),
		ResponseMIMEType: "application/json",
		ResponseSchema:   sectionAnalysisSchema,
	}
}

var sectionAnalysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"relevantCategories": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"categoryId": {Type: genai.TypeString},
					"relevance":  {Type: genai.TypeString, Enum: []string{"high", "medium", "low"}},
					"reason":     {Type: genai.TypeString},
				},
				Required: []string{"categoryId", "relevance", "reason"},
			},
		},
		"keyProvisions":           {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"hasRentControlBoard":     {Type: genai.TypeBoolean},
		"hasComplaintProcess":     {Type: genai.TypeBoolean},
		"hasEnforcementMechanism": {Type: genai.TypeBoolean},
	},
	Required: []string{"relevantCategories", "keyProvisions", "hasRentControlBoard", "hasComplaintProcess", "hasEnforcementMechanism"},
}

// BuildClassifierPrompt builds the prompt for classifying one section.
func BuildClassifierPrompt(content string, categories []opra.Category) string {
	var sb strings.Builder
	sb.WriteString("Analyze this rent control ordinance section and determine which OPRA record categories are relevant.\n\n")
	sb.WriteString("<section>\n")
	sb.WriteString(content)
	sb.WriteString("\n</section>\n\n")
	sb.WriteString("<categories>\n")
	for _, cat := range categories {
		fmt.Fprintf(&sb, "- %s: %s - %s\n", cat.ID, cat.Name, cat.Description)
	}
	sb.WriteString("</categories>\n\n")
	sb.WriteString(`Determine:
1. Which categories this section relates to, with a relevance level
2. Key provisions that would trigger records requests
3. Whether it mentions a rent control board
4. Whether it describes a complaint process
5. Whether it includes enforcement mechanisms

Use only the category IDs listed above. Focus on concrete records that would exist because of this section.`)
	return sb.String()
}

// ParseSectionAnalysis decodes a classifier response. Categories not in the
// allowed set and unknown relevance levels are dropped.
func ParseSectionAnalysis(text string, allowed []opra.Category) (*opra.SectionAnalysis, error) {
	var analysis opra.SectionAnalysis
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &analysis); err != nil {
		return nil, opra.Errorf(opra.EUNAVAILABLE, "gemini classify section: malformed response: %v", err)
	}

	known := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		known[c.ID] = true
	}

	kept := analysis.RelevantCategories[:0]
	for _, rc := range analysis.RelevantCategories {
		if !known[rc.CategoryID] {
			continue
		}
		switch rc.Relevance {
		case opra.RelevanceHigh, opra.RelevanceMedium, opra.RelevanceLow:
			kept = append(kept, rc)
		}
	}
	analysis.RelevantCategories = kept
	return &analysis, nil
}
