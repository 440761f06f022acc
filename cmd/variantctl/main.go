// Command variantctl runs the variant inference engine over a batch of
// card records read from a file or stdin and writes the resulting
// VariantResults as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/guarzo/variantctl/internal/batch"
	"github.com/guarzo/variantctl/internal/cache"
	"github.com/guarzo/variantctl/internal/config"
	"github.com/guarzo/variantctl/internal/customvariant"
	"github.com/guarzo/variantctl/internal/engine"
	"github.com/guarzo/variantctl/internal/model"
	"github.com/guarzo/variantctl/internal/schedule"
)

type cardInput struct {
	ID             string          `json:"cardId"`
	Name           string          `json:"name"`
	Number         string          `json:"number"`
	Rarity         string          `json:"rarity"`
	SetID          string          `json:"setId"`
	SetSeries      string          `json:"setSeries"`
	SetReleased    string          `json:"setReleased"`
	Kinds          []string        `json:"kinds"`
	PricingSignals []string        `json:"pricingSignals"`
	Channels       []model.Channel `json:"channels"`
}

type resultOutput struct {
	CardID       string                              `json:"cardId"`
	SetID        string                              `json:"setId"`
	Era          model.Era                           `json:"era"`
	Rarity       string                              `json:"rarity"`
	Variants     map[model.Finish]model.VariantFlag `json:"variants"`
	PrintSources []model.Channel                     `json:"printSources"`
	Explanations []string                            `json:"explanations"`
	Error        string                              `json:"error,omitempty"`
}


func main() {
	var (
		inputPath = flag.String("input", "", "path to a JSON array of card records (defaults to stdin)")
		envPath   = flag.String("env", ".env", "path to an optional .env file")
		workers   = flag.Int("workers", 0, "batch worker count (0 = automatic)")
		watch     = flag.String("watch", "", "if set, re-run the batch on this cron schedule instead of exiting after one pass")
	)
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		log.Fatalf("variantctl: load config: %v", err)
	}
	if *workers != 0 {
		cfg.BatchWorkers = *workers
	}

	items, err := loadItems(*inputPath)
	if err != nil {
		log.Fatalf("variantctl: load input: %v", err)
	}

	eng := engine.New()
	driver := batch.NewDriver(eng, batch.Config{Workers: cfg.BatchWorkers})

	c, err := cache.New(cfg.CachePath)
	if err != nil {
		log.Fatalf("variantctl: open cache: %v", err)
	}
	resolver := customvariant.NewResolver(nil,
		customvariant.WithTimeout(cfg.CustomVariantTimeout),
		customvariant.WithCache(c, cfg.CacheTTL),
		customvariant.WithRateLimit(cfg.CustomVariantRateHz, cfg.CustomVariantRateBurst),
	)

	sweep := func(ctx context.Context) error {
		outcomes := driver.Run(ctx, items)
		return writeOutcomes(os.Stdout, outcomes, resolver, items)
	}

	if *watch == "" {
		if err := sweep(context.Background()); err != nil {
			log.Fatalf("variantctl: %v", err)
		}
		return
	}

	runner, err := schedule.NewRunner(*watch, sweep)
	if err != nil {
		log.Fatalf("variantctl: invalid -watch schedule: %v", err)
	}
	runner.Start()
	defer runner.Stop(context.Background())

	log.Printf("variantctl: watching on schedule %q, press Ctrl+C to stop", *watch)
	select {}
}

func loadItems(path string) ([]batch.Item, error) {
	var r io.Reader
	if path == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var inputs []cardInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	items := make([]batch.Item, 0, len(inputs))
	for _, in := range inputs {
		card, err := toCardRecord(in)
		if err != nil {
			return nil, err
		}
		items = append(items, batch.Item{Card: card, Channels: in.Channels})
	}
	return items, nil
}

func toCardRecord(in cardInput) (model.CardRecord, error) {
	var released time.Time
	if in.SetReleased != "" {
		var err error
		released, err = time.Parse("2006-01-02", in.SetReleased)
		if err != nil {
			return model.CardRecord{}, fmt.Errorf("card %s: setReleased: %w", in.ID, err)
		}
	}

	signals := make(map[string]struct{}, len(in.PricingSignals))
	for _, s := range in.PricingSignals {
		signals[s] = struct{}{}
	}

	kinds := make(map[string]bool, len(in.Kinds))
	for _, k := range in.Kinds {
		kinds[k] = true
	}

	return model.CardRecord{
		ID:             in.ID,
		Name:           in.Name,
		Number:         in.Number,
		Rarity:         in.Rarity,
		Kinds:          kinds,
		SetID:          in.SetID,
		SetSeries:      in.SetSeries,
		SetReleased:    released,
		PricingSignals: signals,
	}, nil
}

func writeOutcomes(w io.Writer, outcomes []batch.Outcome, resolver *customvariant.Resolver, items []batch.Item) error {
	out := make([]resultOutput, 0, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			out = append(out, resultOutput{CardID: o.CardID, Error: o.Err.Error()})
			continue
		}

		result := o.Result
		if resolver != nil {
			resolver.Resolve(context.Background(), items[i].Card, &result)
		}

		out = append(out, resultOutput{
			CardID:       result.CardID,
			SetID:        result.SetID,
			Era:          result.Era,
			Rarity:       result.Rarity,
			Variants:     result.Variants,
			PrintSources: result.PrintSources,
			Explanations: result.Explanations,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
