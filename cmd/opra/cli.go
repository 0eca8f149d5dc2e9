package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/opra"
	oprachi "github.com/fwojciec/opra/chi"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Taxonomy       *opra.Taxonomy
	Municipalities opra.MunicipalityService
	Ordinances     opra.OrdinanceService
	Requests       opra.RequestService
	Discovery      opra.DiscoveryService
	Processor      opra.OrdinanceProcessor
	Analyzer       opra.OrdinanceAnalyzer
	Retriever      opra.Retriever
	Drafter        opra.RequestDrafter
	Server         *oprachi.Server
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB            string `name:"db" env:"OPRA_DB" default:"${db_path}" help:"SQLite database path"`
	Taxonomy      string `env:"OPRA_TAXONOMY" help:"Category taxonomy YAML file (built-in taxonomy when empty)"`
	Verbose       bool   `short:"v" help:"Log provider calls at debug level"`
	GeminiAPIKey  string `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	TavilyAPIKey  string `name:"tavily-api-key" env:"TAVILY_API_KEY" help:"Tavily API key (DuckDuckGo when empty)"`
	VectorBackend string `enum:"sqlite,postgres" default:"sqlite" env:"OPRA_VECTOR_BACKEND" help:"Where chunk embeddings are stored"`
	DatabaseURL   string `name:"database-url" env:"DATABASE_URL" help:"PostgreSQL URL for the postgres vector backend"`
	AWSRegion     string `name:"aws-region" env:"AWS_REGION" help:"Region of the request PDF bucket"`
	Bucket        string `env:"OPRA_BUCKET" help:"S3 bucket for finalized request PDFs"`
	PDFDir        string `name:"pdf-dir" env:"OPRA_PDF_DIR" help:"Local directory for finalized request PDFs when no bucket is set"`

	Discover       DiscoverCmd       `cmd:"" help:"Find and store a municipality's rent control ordinance"`
	Process        ProcessCmd        `cmd:"" help:"Chunk and embed an ordinance for retrieval"`
	Analyze        AnalyzeCmd        `cmd:"" help:"Map an ordinance onto the records categories"`
	Search         SearchCmd         `cmd:"" help:"Find ordinance sections similar to a query"`
	Compose        ComposeCmd        `cmd:"" help:"Compose an OPRA request for an ordinance"`
	Requests       RequestsCmd       `cmd:"" help:"Manage saved OPRA requests"`
	Municipalities MunicipalitiesCmd `cmd:"" help:"Browse and reset municipalities"`
	Serve          ServeCmd          `cmd:"" help:"Serve the JSON API"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	Name           string `arg:"" help:"Municipality name"`
	County         string `short:"c" help:"County, used to disambiguate"`
	MunicipalityID string `name:"municipality-id" help:"Existing municipality ID"`
}

// ProcessCmd is the "process" subcommand.
type ProcessCmd struct {
	OrdinanceID string `arg:"" help:"Ordinance ID"`
}

// AnalyzeCmd is the "analyze" subcommand.
type AnalyzeCmd struct {
	OrdinanceID string `arg:"" help:"Ordinance ID"`
	Records     bool   `help:"Also draft the records to request per category" negatable:"" default:"true"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query       string `arg:"" help:"What to look for"`
	OrdinanceID string `short:"o" name:"ordinance" help:"Restrict to one ordinance"`
	Limit       int    `short:"n" default:"5" help:"Maximum number of sections"`
}

// ComposeCmd is the "compose" subcommand.
type ComposeCmd struct {
	OrdinanceID string   `arg:"" help:"Ordinance ID"`
	Category    []string `short:"c" name:"category" help:"Category ID to include (repeatable)"`
	All         bool     `help:"Include every relevant category"`
	Provisions  bool     `help:"List the ordinance's key provisions as additional records"`
	Save        bool     `short:"s" help:"Save the request as a draft"`
	Output      string   `short:"o" help:"Write the PDF preview to this path"`
}

// RequestsCmd groups the request subcommands.
type RequestsCmd struct {
	List     RequestsListCmd     `cmd:"" help:"List requests"`
	Show     RequestsShowCmd     `cmd:"" help:"Show a request"`
	Delete   RequestsDeleteCmd   `cmd:"" help:"Delete a draft request"`
	Status   RequestsStatusCmd   `cmd:"" help:"Move a request to a new status"`
	Finalize RequestsFinalizeCmd `cmd:"" help:"Render and upload the request PDF"`
}

// RequestsListCmd is the "requests list" subcommand.
type RequestsListCmd struct {
	Municipality string `short:"m" help:"Municipality ID"`
	Status       string `help:"Request status"`
	Limit        int    `short:"n" default:"50" help:"Maximum requests to list"`
}

// RequestsShowCmd is the "requests show" subcommand.
type RequestsShowCmd struct {
	ID string `arg:"" help:"Request ID"`
}

// RequestsDeleteCmd is the "requests delete" subcommand.
type RequestsDeleteCmd struct {
	ID    string `arg:"" help:"Request ID"`
	Force bool   `help:"Confirm deletion"`
}

// RequestsStatusCmd is the "requests status" subcommand.
type RequestsStatusCmd struct {
	ID     string `arg:"" help:"Request ID"`
	Status string `arg:"" help:"New status (READY, SUBMITTED, ACKNOWLEDGED, FULFILLED, DENIED, APPEALED)"`
}

// RequestsFinalizeCmd is the "requests finalize" subcommand.
type RequestsFinalizeCmd struct {
	ID string `arg:"" help:"Request ID"`
}

// MunicipalitiesCmd groups the municipality subcommands.
type MunicipalitiesCmd struct {
	List  MunicipalitiesListCmd  `cmd:"" help:"List municipalities"`
	Reset MunicipalitiesResetCmd `cmd:"" help:"Delete a municipality's ordinances, chunks and custodians"`
}

// MunicipalitiesListCmd is the "municipalities list" subcommand.
type MunicipalitiesListCmd struct {
	Search string `help:"Match name or county"`
	County string `help:"Exact county"`
	Status string `help:"Ordinance status (has_ordinance, no_ordinance, not_scraped)"`
	Sort   string `enum:"name,county,updated_at" default:"name" help:"Sort key"`
	Desc   bool   `help:"Sort descending"`
	Limit  int    `short:"n" default:"100" help:"Maximum municipalities to list"`
}

// MunicipalitiesResetCmd is the "municipalities reset" subcommand.
type MunicipalitiesResetCmd struct {
	ID    string `arg:"" help:"Municipality ID"`
	Force bool   `help:"Confirm reset"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr           string   `env:"OPRA_ADDR" default:":8080" help:"Listen address"`
	AllowedOrigins []string `name:"allowed-origin" env:"OPRA_ALLOWED_ORIGINS" help:"Browser origin allowed to call the API (repeatable)"`
}
