package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/opra"
	"github.com/fwojciec/opra/analyze"
	"github.com/fwojciec/opra/bloom"
	oprachi "github.com/fwojciec/opra/chi"
	"github.com/fwojciec/opra/discover"
	"github.com/fwojciec/opra/docconv"
	"github.com/fwojciec/opra/draft"
	"github.com/fwojciec/opra/fpdf"
	"github.com/fwojciec/opra/fs"
	"github.com/fwojciec/opra/gemini"
	"github.com/fwojciec/opra/goquery"
	"github.com/fwojciec/opra/htmltomarkdown"
	oprahttp "github.com/fwojciec/opra/http"
	"github.com/fwojciec/opra/ingest"
	"github.com/fwojciec/opra/postgres"
	"github.com/fwojciec/opra/readability"
	"github.com/fwojciec/opra/rod"
	"github.com/fwojciec/opra/s3"
	oprasl "github.com/fwojciec/opra/slog"
	"github.com/fwojciec/opra/sqlite"
	"github.com/fwojciec/opra/tavily"
	"github.com/fwojciec/opra/trafilatura"
	"github.com/fwojciec/opra/yaml"
	"google.golang.org/genai"
)

// URL set sizing for one discovery run.
const (
	urlSetCapacity = 1000
	urlSetFPRate   = 0.001
)

// wiring builds the services a command needs. Commands that only read the
// database never touch the network providers.
type wiring struct {
	main   *Main
	cli    *CLI
	deps   *Dependencies
	stderr io.Writer

	chunks    opra.ChunkService
	vectors   *postgres.DB
	client    *genai.Client
	embedder  opra.Embedder
	retriever opra.Retriever
	browser   bool
}

func (w *wiring) wire(ctx context.Context, cmd string) error {
	db := w.main.DB
	w.deps.Municipalities = sqlite.NewMunicipalityService(db)
	w.deps.Ordinances = sqlite.NewOrdinanceService(db)
	w.deps.Requests = sqlite.NewRequestService(db)
	w.chunks = sqlite.NewChunkService(db)

	if w.cli.VectorBackend == "postgres" {
		if err := w.openVectors(); err != nil {
			return err
		}
		w.chunks = postgres.NewChunkService(w.vectors)
		w.deps.Municipalities = &VectorReset{
			MunicipalityService: w.deps.Municipalities,
			Ordinances:          w.deps.Ordinances,
			Chunks:              w.chunks,
		}
	}

	switch cmd {
	case "discover":
		return w.wireDiscovery(ctx)
	case "process":
		return w.wireProcessor(ctx)
	case "analyze":
		if err := w.wireTaxonomy(); err != nil {
			return err
		}
		return w.wireAnalyzer(ctx)
	case "search":
		if err := w.wireRetrieval(ctx); err != nil {
			return err
		}
		w.deps.Retriever = w.retriever
		return nil
	case "compose", "requests":
		if err := w.wireTaxonomy(); err != nil {
			return err
		}
		return w.wireDrafter(ctx, cmd == "compose")
	case "serve":
		return w.wireServer(ctx)
	}
	return nil
}

func (w *wiring) openVectors() error {
	if w.cli.DatabaseURL == "" {
		fmt.Fprintln(w.stderr, "Hint: Set DATABASE_URL or use --vector-backend=sqlite")
		return fmt.Errorf("DATABASE_URL not set for the postgres vector backend")
	}
	w.vectors = postgres.NewDB(w.cli.DatabaseURL)
	w.vectors.Dimensions = gemini.DefaultDimensions
	if err := w.vectors.Open(); err != nil {
		return fmt.Errorf("failed to open vector database: %w", err)
	}
	w.main.closers = append(w.main.closers, w.vectors)
	return nil
}

func (w *wiring) wireTaxonomy() error {
	var err error
	if w.cli.Taxonomy != "" {
		w.deps.Taxonomy, err = yaml.LoadTaxonomy(w.cli.Taxonomy)
	} else {
		w.deps.Taxonomy, err = yaml.DefaultTaxonomy()
	}
	if err != nil {
		return fmt.Errorf("failed to load taxonomy: %w", err)
	}
	return nil
}

// genaiClient connects to Gemini once per run.
func (w *wiring) genaiClient(ctx context.Context) (*genai.Client, error) {
	if w.client != nil {
		return w.client, nil
	}
	if w.cli.GeminiAPIKey == "" {
		fmt.Fprintln(w.stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  w.cli.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(w.stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	w.client = client
	return client, nil
}

// verbose returns the decorator logger, or nil when decorators are off.
func (w *wiring) verbose() *slog.Logger {
	if w.cli.Verbose {
		return w.deps.Logger
	}
	return nil
}

func (w *wiring) wireRetrieval(ctx context.Context) error {
	if w.retriever != nil {
		return nil
	}
	client, err := w.genaiClient(ctx)
	if err != nil {
		return err
	}
	var embedder opra.Embedder = gemini.NewEmbedder(client)
	if l := w.verbose(); l != nil {
		embedder = oprasl.NewLoggingEmbedder(embedder, l)
	}
	w.embedder = embedder

	var retriever opra.Retriever
	if w.vectors != nil {
		retriever = postgres.NewRetriever(w.vectors, embedder)
	} else {
		retriever = sqlite.NewRetriever(w.main.DB, embedder)
	}
	if l := w.verbose(); l != nil {
		retriever = oprasl.NewLoggingRetriever(retriever, l)
	}
	w.retriever = retriever
	return nil
}

func (w *wiring) wireDiscovery(ctx context.Context) error {
	httpFetcher := oprahttp.NewFetcher()
	w.main.closers = append(w.main.closers, httpFetcher)

	var html opra.Fetcher = httpFetcher
	var documents opra.DocumentFetcher = httpFetcher
	if l := w.verbose(); l != nil {
		html = oprasl.NewLoggingFetcher(html, l)
		documents = oprasl.NewLoggingDocumentFetcher(documents, l)
	}

	var searcher opra.WebSearcher
	if w.cli.TavilyAPIKey != "" {
		searcher = tavily.NewSearcher(w.cli.TavilyAPIKey)
	} else {
		searcher = goquery.NewSearcher(html)
	}
	if l := w.verbose(); l != nil {
		searcher = oprasl.NewLoggingWebSearcher(searcher, l)
	}

	loader := &discover.Loader{
		Documents: documents,
		Extractor: trafilatura.NewExtractor(trafilatura.WithFallback(readability.NewExtractor(""))),
		Converter: htmltomarkdown.NewConverter(),
		Text:      docconv.NewExtractor(),
		Limiter:   discover.NewDomainLimiter(discover.DefaultRequestsPerSecond),
		Logger:    w.deps.Logger,
	}
	if browser, err := rod.NewFetcher(); err != nil {
		w.deps.Logger.Warn("browser unavailable, script-rendered pages will be read statically", "err", err)
	} else {
		w.main.closers = append(w.main.closers, browser)
		w.browser = true
		var fetcher opra.Fetcher = browser
		if l := w.verbose(); l != nil {
			fetcher = oprasl.NewLoggingFetcher(fetcher, l)
		}
		loader.Browser = fetcher
	}

	discoverer := &discover.Discoverer{
		Searcher: searcher,
		Pages:    loader,
		Links:    goquery.NewLinkFinder(),
		HTML:     html,
		NewURLSet: func() opra.URLSet {
			return bloom.NewURLSet(urlSetCapacity, urlSetFPRate)
		},
		Logger: w.deps.Logger,
	}

	// Without Gemini the chain still runs the search strategies.
	if w.cli.GeminiAPIKey != "" {
		client, err := w.genaiClient(ctx)
		if err != nil {
			return err
		}
		var answers opra.AnswerEngine = gemini.NewAnswerEngine(client)
		var judge opra.OrdinanceJudge = gemini.NewJudge(client)
		if l := w.verbose(); l != nil {
			answers = oprasl.NewLoggingAnswerEngine(answers, l)
			judge = oprasl.NewLoggingJudge(judge, l)
		}
		discoverer.Answers = answers
		discoverer.Judge = judge
	}

	w.deps.Discovery = &discover.Service{
		Discoverer:     discoverer,
		Municipalities: w.deps.Municipalities,
		Ordinances:     w.deps.Ordinances,
		Custodians:     sqlite.NewCustodianService(w.main.DB),
		Finder:         &discover.CustodianFinder{Searcher: searcher, Logger: w.deps.Logger},
		Logger:         w.deps.Logger,
	}
	return nil
}

func (w *wiring) wireProcessor(ctx context.Context) error {
	if err := w.wireRetrieval(ctx); err != nil {
		return err
	}
	p := &ingest.Processor{
		Ordinances: w.deps.Ordinances,
		Chunks:     w.chunks,
		Chunker:    opra.NewChunker(),
		Embedder:   w.embedder,
		Logger:     w.deps.Logger,
	}
	// Token counts are informational; run without them if the local
	// tokenizer cannot load.
	if tc, err := gemini.NewTokenCounter(gemini.TokenizerModel); err != nil {
		w.deps.Logger.Warn("token counter unavailable", "err", err)
	} else {
		p.TokenCounter = tc
	}
	w.deps.Processor = p
	return nil
}

func (w *wiring) wireAnalyzer(ctx context.Context) error {
	if err := w.wireRetrieval(ctx); err != nil {
		return err
	}
	var classifier opra.SectionClassifier = gemini.NewClassifier(w.client)
	var records opra.RecordsWriter = gemini.NewRecordsWriter(w.client)
	if l := w.verbose(); l != nil {
		classifier = oprasl.NewLoggingClassifier(classifier, l)
		records = oprasl.NewLoggingRecordsWriter(records, l)
	}
	w.deps.Analyzer = &analyze.Analyzer{
		Ordinances: w.deps.Ordinances,
		Chunks:     w.chunks,
		Retriever:  w.retriever,
		Classifier: classifier,
		Records:    records,
		Taxonomy:   w.deps.Taxonomy,
		Logger:     w.deps.Logger,
	}
	return nil
}

// wireDrafter builds the request drafter. Composing needs the analyzer;
// managing saved requests only needs rendering and storage.
func (w *wiring) wireDrafter(ctx context.Context, compose bool) error {
	s := &draft.Service{
		Municipalities: w.deps.Municipalities,
		Ordinances:     w.deps.Ordinances,
		Custodians:     sqlite.NewCustodianService(w.main.DB),
		Requests:       w.deps.Requests,
		Taxonomy:       w.deps.Taxonomy,
		Renderer:       fpdf.NewRenderer(),
		Logger:         w.deps.Logger,
	}
	if compose {
		if err := w.wireAnalyzer(ctx); err != nil {
			return err
		}
		s.Analyzer = w.deps.Analyzer
	}
	var store opra.BlobStore
	switch {
	case w.cli.Bucket != "":
		blobs, err := s3.NewBlobStore(ctx, s3.Config{Bucket: w.cli.Bucket, Region: w.cli.AWSRegion})
		if err != nil {
			fmt.Fprintln(w.stderr, "Hint: Set AWS_REGION and AWS credentials for the OPRA_BUCKET bucket")
			return fmt.Errorf("failed to configure blob storage: %w", err)
		}
		store = blobs
	case w.cli.PDFDir != "":
		store = fs.NewBlobStore(w.cli.PDFDir)
	}
	if store != nil {
		if l := w.verbose(); l != nil {
			store = oprasl.NewLoggingBlobStore(store, l)
		}
		s.Blobs = store
	}
	w.deps.Drafter = s
	return nil
}

func (w *wiring) wireServer(ctx context.Context) error {
	if err := w.wireTaxonomy(); err != nil {
		return err
	}
	if err := w.wireDiscovery(ctx); err != nil {
		return err
	}
	if err := w.wireProcessor(ctx); err != nil {
		return err
	}
	if err := w.wireDrafter(ctx, true); err != nil {
		return err
	}

	s := oprachi.NewServer()
	s.Logger = w.deps.Logger
	s.Status = oprachi.Status{
		Providers: map[string]bool{
			"gemini":   w.cli.GeminiAPIKey != "",
			"tavily":   w.cli.TavilyAPIKey != "",
			"browser":  w.browser,
			"s3":       w.cli.Bucket != "",
			"localPdf": w.cli.Bucket == "" && w.cli.PDFDir != "",
		},
		VectorBackend: w.cli.VectorBackend,
	}
	s.Municipalities = w.deps.Municipalities
	s.Ordinances = w.deps.Ordinances
	s.Requests = w.deps.Requests
	s.Discovery = w.deps.Discovery
	s.Processor = w.deps.Processor
	s.Analyzer = w.deps.Analyzer
	s.Drafter = w.deps.Drafter
	w.deps.Server = s
	return nil
}
