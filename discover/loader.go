package discover

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/fwojciec/opra"
)

// ThinContentLength is the extracted HTML length below which a statically
// fetched page is re-rendered in the browser.
const ThinContentLength = 2000

var _ opra.PageLoader = (*Loader)(nil)

// Loader fetches a candidate page and reduces it to text. HTML goes
// through the extractor and converter; other documents such as PDFs go
// through the text extractor.
type Loader struct {
	Documents opra.DocumentFetcher
	Browser   opra.Fetcher // optional, for script-rendered code viewers
	Extractor opra.Extractor
	Converter opra.Converter
	Text      opra.TextExtractor // optional
	Limiter   opra.DomainLimiter // optional

	RetryDelays []time.Duration
	Logger      *slog.Logger
}

// Load implements opra.PageLoader.
func (l *Loader) Load(ctx context.Context, rawURL string) (*opra.Page, error) {
	logger := loggerOrDiscard(l.Logger)
	delays := l.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	if l.Limiter != nil {
		if err := l.Limiter.Wait(ctx, hostOf(rawURL)); err != nil {
			return nil, err
		}
	}

	doc, err := withRetry(ctx, delays, logger, rawURL, func(ctx context.Context) (*opra.Document, error) {
		return l.Documents.FetchDocument(ctx, rawURL)
	})
	if err != nil {
		return nil, err
	}

	if isHTML(doc.ContentType) {
		return l.loadHTML(ctx, doc)
	}
	if l.Text == nil {
		return nil, opra.Errorf(opra.EINVALID, "cannot read %s documents", doc.ContentType)
	}

	text, err := l.Text.ExtractText(ctx, bytes.NewReader(doc.Body), doc.ContentType)
	if err != nil {
		return nil, err
	}
	return &opra.Page{URL: doc.URL, Title: documentTitle(doc.URL), Content: text}, nil
}

func (l *Loader) loadHTML(ctx context.Context, doc *opra.Document) (*opra.Page, error) {
	html := string(doc.Body)
	extracted, staticErr := l.Extractor.Extract(html)

	if l.Browser != nil && isThin(extracted) {
		if rendered, err := l.Browser.Fetch(ctx, doc.URL); err == nil {
			if r, err := l.Extractor.Extract(rendered); err == nil && renderedIsRicher(extracted, r) {
				extracted = r
			}
		} else {
			loggerOrDiscard(l.Logger).Debug("browser render failed", "url", doc.URL, "err", err)
		}
	}

	if extracted == nil {
		return nil, staticErr
	}

	content, err := l.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return nil, err
	}
	return &opra.Page{URL: doc.URL, Title: extracted.Title, Content: content}, nil
}

func isThin(r *opra.ExtractResult) bool {
	return r == nil || len(r.ContentHTML) < ThinContentLength
}

// renderedIsRicher reports whether browser rendering produced meaningfully
// more content than the static fetch: anything when the static page was
// empty, otherwise more than 50% longer.
func renderedIsRicher(static, rendered *opra.ExtractResult) bool {
	renderedLen := len(rendered.ContentHTML)
	if static == nil || len(static.ContentHTML) == 0 {
		return renderedLen > 0
	}
	return float64(renderedLen) > float64(len(static.ContentHTML))*1.5
}

func isHTML(contentType string) bool {
	return contentType == "" ||
		strings.HasPrefix(contentType, "text/html") ||
		strings.HasPrefix(contentType, "application/xhtml")
}

func documentTitle(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
