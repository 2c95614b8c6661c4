// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/adoptmatch"
	"github.com/poiesic/adoptmatch/ai"
	"github.com/poiesic/adoptmatch/ai/openai"
	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/ingest"
	"github.com/poiesic/adoptmatch/reembed"
	"github.com/poiesic/adoptmatch/storage/badger"
	"github.com/poiesic/adoptmatch/vocab"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "adoptmatch",
		Usage:  "Adoption listing matcher: ingest, dedupe, and rank against a profile",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Fetch, dedupe, and rank listings against a profile",
				Action: searchCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:     "personality",
						Aliases:  []string{"p"},
						Usage:    "Free-text description of the personality you are looking for",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "city",
						Usage: "Anchor city for the distance search",
					},
					&cli.StringFlag{
						Name:  "state",
						Usage: "Anchor state for the distance search",
					},
					&cli.Float64Flag{
						Name:  "max-distance",
						Usage: "Maximum distance in miles (0 = unbounded)",
					},
					&cli.StringSliceFlag{
						Name:  "age",
						Usage: "Acceptable age buckets (baby, young, adult, senior); repeatable",
					},
					&cli.BoolFlag{
						Name:  "good-with-children",
						Usage: "Require listings marked good with children",
					},
					&cli.BoolFlag{
						Name:  "good-with-dogs",
						Usage: "Require listings marked good with dogs",
					},
					&cli.BoolFlag{
						Name:  "good-with-cats",
						Usage: "Require listings marked good with cats",
					},
					&cli.BoolFlag{
						Name:  "include-special-needs",
						Usage: "Include special-needs listings",
					},
					&cli.StringSliceFlag{
						Name:  "color",
						Usage: "Preferred color in your own words (e.g. tuxedo); repeatable",
					},
					&cli.StringSliceFlag{
						Name:  "breed",
						Usage: "Preferred breed in your own words; repeatable",
					},
					&cli.StringFlag{
						Name:  "coat-length",
						Usage: "Preferred coat length",
					},
					&cli.IntFlag{
						Name:    "matches",
						Aliases: []string{"k"},
						Usage:   "Number of matches to return",
						Value:   adoptmatch.DefaultMatchCount,
					},
					&cli.BoolFlag{
						Name:  "use-cache",
						Usage: "Rank the existing cache without fetching from sources",
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Show cache and semantic index sizes",
				Action: statsCommand,
				Flags: []cli.Flag{
					dbFlag(),
				},
			},
			{
				Name:   "purge",
				Usage:  "Remove listings older than the retention window",
				Action: purgeCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.DurationFlag{
						Name:     "older-than",
						Usage:    "Remove listings fetched more than this long ago (e.g. 720h)",
						Required: true,
					},
				},
			},
			{
				Name:   "index-vocab",
				Usage:  "Build the per-source vocabulary indexes",
				Action: indexVocabCommand,
				Flags:  engineFlags(),
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate embeddings for all cached listings",
				Action: reembedCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "include-images",
						Usage: "Also regenerate image embeddings",
					},
					&cli.StringFlag{
						Name:  "image-host",
						Usage: "Image embedding service host URL (defaults to embedding-host)",
					},
					&cli.StringFlag{
						Name:  "image-model",
						Usage: "Image embedding model name",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of listings to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N listings",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to the cache directory",
		Required: true,
	}
}

// engineFlags are shared by the commands that need the full engine stack.
func engineFlags() []cli.Flag {
	return []cli.Flag{
		dbFlag(),
		&cli.StringSliceFlag{
			Name:     "source",
			Aliases:  []string{"s"},
			Usage:    "Path to a source snapshot JSON file; repeatable",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "dictionary",
			Usage: "YAML file of synonym overrides merged into the built-in dictionary",
		},
	}
}

func buildEngine(c *cli.Context) (*adoptmatch.Engine, error) {
	sources := make([]ingest.Source, 0, len(c.StringSlice("source")))
	for _, path := range c.StringSlice("source") {
		src, err := ingest.NewFileSource(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []adoptmatch.EngineOption{
		adoptmatch.WithAIConfig(aiConfig),
	}

	if dictPath := c.String("dictionary"); dictPath != "" {
		overrides, err := vocab.LoadDictionaryFile(dictPath)
		if err != nil {
			return nil, fmt.Errorf("loading dictionary overrides: %w", err)
		}
		dict := vocab.DefaultDictionary()
		dict.Merge(overrides)
		opts = append(opts, adoptmatch.WithDictionary(dict))
	}

	if c.IsSet("matches") {
		opts = append(opts, adoptmatch.WithMatchCount(c.Int("matches")))
	}
	opts = append(opts, adoptmatch.WithQuery(ingest.Query{
		City:          c.String("city"),
		State:         c.String("state"),
		MaxDistanceMi: c.Float64("max-distance"),
	}))

	return adoptmatch.NewEngine(c.String("db"), sources, opts...)
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.IndexVocabularies(ctx); err != nil {
		return fmt.Errorf("indexing vocabularies: %w", err)
	}

	profile := &core.Profile{
		PersonalityText:         c.String("personality"),
		MaxDistanceMi:           c.Float64("max-distance"),
		AgeRange:                c.StringSlice("age"),
		RequireGoodWithChildren: c.Bool("good-with-children"),
		RequireGoodWithDogs:     c.Bool("good-with-dogs"),
		RequireGoodWithCats:     c.Bool("good-with-cats"),
		IncludeSpecialNeeds:     c.Bool("include-special-needs"),
		PreferredColors:         c.StringSlice("color"),
		PreferredBreeds:         c.StringSlice("breed"),
		PreferredCoatLength:     c.String("coat-length"),
	}

	result, err := engine.Search(ctx, profile, c.Bool("use-cache"))
	if err != nil {
		return err
	}

	fmt.Printf("Sources queried: %s\n", strings.Join(result.SourcesQueried, ", "))
	fmt.Printf("Found %d listings (%d duplicates removed)\n\n", result.TotalFound, result.DuplicatesRemoved)

	if len(result.Matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for i, m := range result.Matches {
		l := m.Listing
		fmt.Printf("%2d. %s (%s, %s) — %s\n", i+1, l.Name, l.Breed, l.Age, l.Organization)
		fmt.Printf("    score %.2f  %s\n", m.Score, m.Explanation)
		if l.URL != "" {
			fmt.Printf("    %s\n", l.URL)
		}
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewListingRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	records, err := repo.CountListings(ctx)
	if err != nil {
		return err
	}
	embedded, err := repo.CountEmbedded(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Cache records:          %d\n", records)
	fmt.Printf("Vector index documents: %d\n", embedded)
	return nil
}

func purgeCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewListingRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	cutoff := time.Now().UTC().Add(-c.Duration("older-than"))
	removed, err := repo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d listings fetched before %s\n", removed, cutoff.Format(time.RFC3339))
	return nil
}

func indexVocabCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.IndexVocabularies(ctx); err != nil {
		return fmt.Errorf("indexing vocabularies: %w", err)
	}

	fmt.Println("Vocabulary indexes built.")
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewListingRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	imageHost := c.String("image-host")
	if imageHost == "" {
		imageHost = c.String("embedding-host")
	}

	configOpts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithImageHost(imageHost),
	}
	if model := c.String("image-model"); model != "" {
		configOpts = append(configOpts, ai.WithImageModel(model))
	}
	aiConfig := ai.NewConfig(configOpts...)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	var imageEmbedder ai.ImageEmbedder
	if c.Bool("include-images") {
		imageEmbedder, err = openai.NewImageEmbedder(aiConfig)
		if err != nil {
			return fmt.Errorf("failed to create image embedder: %w", err)
		}
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		IncludeImages:  c.Bool("include-images"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := reembed.NewReembedder(repo, embedder, imageEmbedder, reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Cache: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
