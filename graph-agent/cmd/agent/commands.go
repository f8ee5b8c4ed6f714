package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/app"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/config"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/ingestion"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath   string
	indexPath    string
	indexDrive   bool
	indexRebuild bool
	queryText    string
	queryK       int
	queryHops    int
	neighborHops int
	exportFormat string
	driveCode    string

	rootCmd = &cobra.Command{
		Use:           "agent",
		Short:         "Build and query a knowledge graph from your documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	indexCmd = &cobra.Command{
		Use:   "index",
		Short: "Extract triplets from local files (and optionally Google Drive) into the graph",
		Long:  "Extract triplets into the persisted graph, adding to what is already there. --rebuild starts from an empty graph.",
		RunE:  runIndex,
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Answer a question from the graph",
		RunE:  runQuery,
	}

	neighborsCmd = &cobra.Command{
		Use:   "neighbors [entity]",
		Short: "List the entities within --hops of an entity",
		Args:  cobra.ExactArgs(1),
		RunE:  runNeighbors,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Print the graph in node-link form",
		RunE:  runExport,
	}

	driveAuthCmd = &cobra.Command{
		Use:   "drive-auth",
		Short: "Authorise read-only Google Drive access",
		RunE:  runDriveAuth,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default $GRAPH_RAG_CONFIG)")

	indexCmd.Flags().StringVar(&indexPath, "path", "./data", "path to folder to index")
	indexCmd.Flags().BoolVar(&indexDrive, "drive", false, "also index the configured Google Drive folder")
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "discard the persisted graph before indexing")

	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "query text")
	queryCmd.Flags().IntVarP(&queryK, "top-k", "k", 0, "number of snippets to retrieve (default from config)")
	queryCmd.Flags().IntVar(&queryHops, "hops", 0, "search radius (default from config)")
	queryCmd.MarkFlagRequired("query")

	neighborsCmd.Flags().IntVar(&neighborHops, "hops", 1, "number of hops")

	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or yaml")

	driveAuthCmd.Flags().StringVar(&driveCode, "code", "", "authorisation code from the consent page")

	rootCmd.AddCommand(indexCmd, queryCmd, neighborsCmd, exportCmd, driveAuthCmd)
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logger, nil)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	defer a.Logger.Sync()

	sources := []ingestion.Source{ingestion.NewLocalSource(indexPath, a.Logger)}
	if indexDrive {
		d, err := ingestion.NewDriveSource(ctx, a.Config.Drive, a.Logger)
		if err != nil {
			return fmt.Errorf("google drive: %w", err)
		}
		sources = append(sources, d)
	}

	res, err := indexSources(ctx, a, sources, indexRebuild)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Indexing complete: %d chunks, %d triplets, %d entities, %d relations.\n",
		res.chunks, res.triplets, a.Store.NodeCount(), a.Store.EdgeCount())
	return nil
}

type indexResult struct {
	chunks   int
	triplets int
}

// indexSources extracts every source into a's graph and saves it. With
// rebuild the loaded graph is dropped first, so the saved graph holds only
// what these sources yield.
func indexSources(ctx context.Context, a *app.App, sources []ingestion.Source, rebuild bool) (indexResult, error) {
	docs, err := ingestion.Collect(ctx, sources...)
	if err != nil {
		return indexResult{}, err
	}
	if rebuild {
		a.Logger.Info("discarding existing graph",
			zap.String("graph", a.Store.Location()),
			zap.Int("nodes", a.Store.NodeCount()),
			zap.Int("edges", a.Store.EdgeCount()))
		a.Store.Restore(&kg.Snapshot{})
	}
	a.Logger.Info("starting indexing", zap.Int("chunks", len(docs)), zap.Bool("rebuild", rebuild))

	added, err := a.Extractor.BuildIndex(ctx, docs)
	return indexResult{chunks: len(docs), triplets: added}, err
}

func runQuery(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(queryText) == "" {
		return errors.New(`please provide -q "your query"`)
	}
	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	defer a.Logger.Sync()

	st, err := a.Ask(ctx, queryText, queryK, queryHops)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Retrieved:", strings.Join(st.Docs, ", "))
	fmt.Fprintln(out, "\n===== ANSWER =====")
	fmt.Fprintln(out, st.Answer)
	return nil
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, n := range a.Store.Neighbors(args[0], neighborHops) {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	return writeSnapshot(cmd.OutOrStdout(), a.Store.Snapshot(), exportFormat)
}

func writeSnapshot(w io.Writer, snap *kg.Snapshot, format string) error {
	switch format {
	case "json":
		return kg.EncodeSnapshot(w, snap)
	case "yaml", "yml":
		return kg.EncodeSnapshotYAML(w, snap)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func runDriveAuth(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Drive.ClientID == "" || cfg.Drive.ClientSecret == "" {
		return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}
	conf := ingestion.DriveOAuthConfig(cfg.Drive)
	out := cmd.OutOrStdout()

	if driveCode == "" {
		fmt.Fprintln(out, "Open this URL, approve access, then rerun with --code:")
		fmt.Fprintln(out, ingestion.AuthURL(conf))
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()
	if _, err := ingestion.ExchangeCode(ctx, conf, driveCode, cfg.Drive.TokenFile); err != nil {
		return err
	}
	fmt.Fprintln(out, "Token saved to", cfg.Drive.TokenFile)
	return nil
}
