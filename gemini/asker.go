package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/opra"
	"google.golang.org/genai"
)

// Ensure AnswerEngine implements opra.AnswerEngine at compile time.
var _ opra.AnswerEngine = (*AnswerEngine)(nil)

// AnswerEngine implements opra.AnswerEngine using Gemini grounded with
// Google Search. Citations come from the grounding metadata.
type AnswerEngine struct {
	gen generator
}

// NewAnswerEngine creates a new AnswerEngine.
func NewAnswerEngine(client *genai.Client, opts ...Option) *AnswerEngine {
	return &AnswerEngine{gen: newGenerator(client, DefaultModel, opts)}
}

// Ask answers a research question about a municipality's ordinances.
func (a *AnswerEngine) Ask(ctx context.Context, question string) (*opra.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, opra.Errorf(opra.EINVALID, "question required")
	}

	result, err := a.gen.generate(ctx, "ask", question, AnswerConfig())
	if err != nil {
		return nil, err
	}

	return &opra.Answer{
		Content:   result.Text(),
		Citations: ParseCitations(result),
	}, nil
}

// AnswerConfig returns the GenerateContentConfig for grounded research.
func AnswerConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a municipal ordinance research assistant specializing in New Jersey municipalities. " +
					"When searching for ordinances, you MUST verify the municipality is in New Jersey and not in any other state. " +
					"Always cite your sources with specific URLs from official sources like ecode360.com, municode.com, or official .gov websites. " +
					"Never return results from municipalities in other states.",
			}},
		},
		Temperature: float32Ptr(0.1),
		Tools:       []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
}

// ParseCitations extracts web sources from the grounding metadata of the
// first candidate, deduplicated by URL.
func ParseCitations(result *genai.GenerateContentResponse) []opra.Citation {
	if result == nil || len(result.Candidates) == 0 {
		return nil
	}
	meta := result.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	seen := make(map[string]bool)
	var citations []opra.Citation
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		citations = append(citations, opra.Citation{URL: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return citations
}
