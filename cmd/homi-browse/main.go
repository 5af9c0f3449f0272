// Command homi-browse lists professionals or jobs from the Homi API with
// the browse filters, scrolling through pages like the web list views.
//
// Usage:
//
//	homi-browse -resource professionals -category plumbing -sort rating -pages 2
//	homi-browse -resource jobs -search "boiler" -all
//	homi-browse -save job-42
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/homi-client/internal/config"
	"github.com/Sternrassler/homi-client/pkg/analytics"
	"github.com/Sternrassler/homi-client/pkg/client"
	"github.com/Sternrassler/homi-client/pkg/filter"
	"github.com/Sternrassler/homi-client/pkg/logging"
	"github.com/Sternrassler/homi-client/pkg/saved"
)

// options are the parsed command line flags.
type options struct {
	resource  string
	state     filter.State
	pages     int
	all       bool
	save      string
	listSaved bool
	envHelp   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "homi-browse:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.envHelp {
		return config.Usage(stdout)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.Setup(logging.Config{
		Level:   logging.LogLevel(cfg.LogLevel),
		Pretty:  cfg.LogPretty,
		Service: "homi-browse",
		Output:  stderr,
	})

	jobs := saved.NewJobs(saved.NewFileStorage(cfg.SavedPath), logger)
	if err := jobs.Load(ctx); err != nil {
		return err
	}

	if opts.save != "" {
		isSaved, err := jobs.Toggle(ctx, opts.save)
		if err != nil {
			return err
		}
		if isSaved {
			fmt.Fprintf(stdout, "saved %s\n", opts.save)
		} else {
			fmt.Fprintf(stdout, "removed %s\n", opts.save)
		}
		return nil
	}
	if opts.listSaved {
		for _, id := range jobs.IDs() {
			fmt.Fprintln(stdout, id)
		}
		return nil
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
			redisClient = nil
		}
	}

	clientCfg := client.DefaultConfig(cfg.APIURL, redisClient)
	clientCfg.UserAgent = "homi-browse/0.1.0"
	clientCfg.Timeout = cfg.HTTPTimeout
	clientCfg.CacheTTL = cfg.CacheTTL
	clientCfg.MaxRetries = cfg.MaxRetries
	apiClient, err := client.New(clientCfg)
	if err != nil {
		return err
	}
	defer apiClient.Close()
	apiClient.SetLogger(logging.NewLogger("homi-client"))

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	b := &browser{
		opts:      opts,
		pageSize:  cfg.PageSize,
		publisher: publisher,
		logger:    logger,
		out:       stdout,
		saved:     jobs,
	}

	switch opts.resource {
	case "professionals":
		return browse(ctx, b, client.Professionals(apiClient), renderProfessional)
	default:
		return browse(ctx, b, client.Jobs(apiClient), b.renderJob)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("homi-browse", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts          options
		subcategories string
		sortKey       string
		minPrice      optionalFloat
		maxPrice      optionalFloat
		minRating     optionalFloat
	)

	fs.StringVar(&opts.resource, "resource", "professionals", "resource to browse: professionals or jobs")
	fs.StringVar(&opts.state.Category, "category", "", "category key")
	fs.StringVar(&subcategories, "subcategories", "", "comma separated subcategory keys")
	fs.StringVar(&opts.state.Search, "search", "", "search text")
	fs.StringVar(&sortKey, "sort", filter.SortRecommended, "sort: recommended, rating, reviews, price_asc, price_desc, newest")
	fs.StringVar(&opts.state.City, "city", "", "service area city")
	fs.Var(&minPrice, "min-price", "minimum price")
	fs.Var(&maxPrice, "max-price", "maximum price")
	fs.Var(&minRating, "min-rating", "minimum rating (0-5)")
	fs.IntVar(&opts.pages, "pages", 1, "number of pages to scroll through")
	fs.BoolVar(&opts.all, "all", false, "fetch every page in parallel")
	fs.StringVar(&opts.save, "save", "", "toggle a saved job id and exit")
	fs.BoolVar(&opts.listSaved, "saved", false, "print saved job ids and exit")
	fs.BoolVar(&opts.envHelp, "env-help", false, "print the HOMI_* environment variables and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.resource != "professionals" && opts.resource != "jobs" {
		return opts, fmt.Errorf("unknown resource %q", opts.resource)
	}
	if opts.pages < 1 {
		return opts, fmt.Errorf("-pages must be at least 1")
	}
	if subcategories != "" {
		opts.state = opts.state.WithSubcategories(strings.Split(subcategories, ",")...)
	}
	opts.state = opts.state.
		WithSort(sortKey).
		WithPriceRange(minPrice.ptr, maxPrice.ptr).
		WithMinRating(minRating.ptr)

	if err := opts.state.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func newPublisher(cfg *config.Config, logger zerolog.Logger) analytics.Publisher {
	pubs := analytics.Multi{analytics.NewLogPublisher(logger)}
	if cfg.NATSURL != "" {
		nats, err := analytics.NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("NATS unavailable, analytics logged only")
		} else {
			pubs = append(pubs, nats)
		}
	}
	return pubs
}
