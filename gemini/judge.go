package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/opra"
	"google.golang.org/genai"
)

var _ opra.OrdinanceJudge = (*Judge)(nil)

// ValidOrdinanceMarker is the token the model emits for a genuine ordinance.
const ValidOrdinanceMarker = "VALID_ORDINANCE"

// maxJudgeContent bounds the content sent for judging.
const maxJudgeContent = 30000

// Judge implements opra.OrdinanceJudge with Gemini.
type Judge struct {
	gen generator
}

// NewJudge creates a new Judge.
func NewJudge(client *genai.Client, opts ...Option) *Judge {
	return &Judge{gen: newGenerator(client, DefaultModel, opts)}
}

// JudgeOrdinance asks the model whether content is the municipality's rent
// control ordinance.
func (j *Judge) JudgeOrdinance(ctx context.Context, content, sourceURL, municipality, county string) (*opra.Judgement, error) {
	if strings.TrimSpace(content) == "" {
		return &opra.Judgement{Valid: false, Reasoning: "empty content"}, nil
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: "You are an expert at identifying and extracting municipal ordinance text."}},
		},
		Temperature: float32Ptr(0.1),
	}
	result, err := j.gen.generate(ctx, "judge ordinance", BuildJudgePrompt(content, sourceURL, municipality, county), config)
	if err != nil {
		return nil, err
	}
	return ParseJudgement(result.Text()), nil
}

// BuildJudgePrompt builds the judging prompt.
func BuildJudgePrompt(content, sourceURL, municipality, county string) string {
	if county == "" {
		county = "NJ"
	}
	if len(content) > maxJudgeContent {
		content = content[:maxJudgeContent]
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze this content and determine if it contains a rent control ordinance for %s, %s.\n\n", municipality, county)
	fmt.Fprintf(&sb, "Content from %s:\n%s\n\n", sourceURL, content)
	fmt.Fprintf(&sb, "If this is a rent control ordinance, respond with %q.\n", ValidOrdinanceMarker)
	sb.WriteString("If not, explain what the content actually is.")
	return sb.String()
}

// ParseJudgement turns a model reply into a Judgement.
func ParseJudgement(text string) *opra.Judgement {
	text = strings.TrimSpace(text)
	return &opra.Judgement{
		Valid:     strings.Contains(text, ValidOrdinanceMarker) && !strings.Contains(text, "NOT_"+ValidOrdinanceMarker),
		Reasoning: text,
	}
}
