package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/opra"
	"google.golang.org/genai"
)

var _ opra.RecordsWriter = (*RecordsWriter)(nil)

// MaxRecords caps the record bullets kept per category.
const MaxRecords = 5

// RecordsWriter implements opra.RecordsWriter with Gemini.
type RecordsWriter struct {
	gen generator
}

// NewRecordsWriter creates a new RecordsWriter.
func NewRecordsWriter(client *genai.Client, opts ...Option) *RecordsWriter {
	return &RecordsWriter{gen: newGenerator(client, DefaultModel, opts)}
}

// WriteRecords drafts specific record types for the category from the excerpts.
func (w *RecordsWriter) WriteRecords(ctx context.Context, category opra.Category, excerpts []string) ([]string, error) {
	if len(excerpts) == 0 {
		return nil, opra.Errorf(opra.EINVALID, "excerpts required")
	}

	result, err := w.gen.generate(ctx, "write records", BuildRecordsPrompt(category, excerpts), RecordsConfig())
	if err != nil {
		return nil, err
	}
	return ParseRecords(result.Text())
}

// RecordsConfig returns the GenerateContentConfig for records drafting.
func RecordsConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You draft precise New Jersey Open Public Records Act requests. Name record types a municipality actually keeps.",
			}},
		},
		Temperature:      float32Ptr(0.3),
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"records": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{"records"},
		},
	}
}

// BuildRecordsPrompt builds the records drafting prompt.
func BuildRecordsPrompt(category opra.Category, excerpts []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the following ordinance sections, generate a specific list of records to request under the %q category.\n\n", category.Name)
	fmt.Fprintf(&sb, "Category Description: %s\n\n", category.Description)
	sb.WriteString("<sections>\n")
	for _, e := range excerpts {
		sb.WriteString("<section>\n")
		sb.WriteString(e)
		sb.WriteString("\n</section>\n")
	}
	sb.WriteString("</sections>\n\n")
	sb.WriteString("Generate 3-5 specific record types that would exist based on these ordinance provisions. Be specific and reference the ordinance requirements where applicable.")
	return sb.String()
}

// ParseRecords decodes a records response, dropping blanks and keeping at
// most MaxRecords entries.
func ParseRecords(text string) ([]string, error) {
	var resp struct {
		Records []string `json:"records"`
	}
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &resp); err != nil {
		return nil, opra.Errorf(opra.EUNAVAILABLE, "gemini write records: malformed response: %v", err)
	}

	var records []string
	for _, r := range resp.Records {
		if r = strings.TrimSpace(r); r != "" {
			records = append(records, r)
		}
		if len(records) == MaxRecords {
			break
		}
	}
	return records, nil
}
