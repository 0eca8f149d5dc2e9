package opra

import "context"

// Citation is a source an answer engine relied on.
type Citation struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Answer is synthesized text returned by an answer engine.
type Answer struct {
	Content   string     `json:"content"`
	Citations []Citation `json:"citations"`
}

// AnswerEngine answers natural language questions using live web search.
type AnswerEngine interface {
	// Ask answers the question. Returns EUNAVAILABLE when the provider fails.
	Ask(ctx context.Context, question string) (*Answer, error)
}

// Judgement is an AI verdict on whether text is the requested ordinance.
type Judgement struct {
	Valid     bool   `json:"valid"`
	Reasoning string `json:"reasoning"`
}

// OrdinanceJudge decides whether content is a rent control ordinance for a
// municipality when lexical heuristics are inconclusive.
type OrdinanceJudge interface {
	JudgeOrdinance(ctx context.Context, content, sourceURL, municipality, county string) (*Judgement, error)
}
