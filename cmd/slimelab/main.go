// Command slimelab runs one scripted laboratory session: it seeds two
// compatible slimes, breeds them, raises the offspring to evolution level,
// evolves it and prints a JSON summary of the result.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"slimelab/internal/blob"
	"slimelab/internal/config"
	"slimelab/internal/core"
	"slimelab/internal/lineage"
	"slimelab/pkg/domain"
)

const (
	startingFood = 200
	breedingTick = 10.0
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	seed        int64
	mode        core.EvolutionMode
	item        string
	environment domain.Environment
	hour        int
	catalogPath string
	trace       bool
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("slimelab", flag.ContinueOnError)
	fs.SetOutput(stderr)
	seed := fs.Int64("seed", 1, "random seed for breeding")
	mode := fs.String("mode", string(core.ModeLevelTree), "evolution mode: level, environment, time or affinity")
	item := fs.String("item", "Evo Crystal", "evolution item name")
	env := fs.String("env", "", "containment environment for the environment mode (default: the offspring's native habitat)")
	hour := fs.Int("hour", -1, "hour of day for the time mode; -1 uses the current hour")
	catalogPath := fs.String("catalog", "", "YAML catalog overlay; overrides SLIMELAB_CATALOG_PATH")
	trace := fs.Bool("trace", false, "write operation spans to stderr as JSON lines")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	opts := options{seed: *seed, item: *item, hour: *hour, catalogPath: *catalogPath, trace: *trace}
	var err error
	if opts.mode, err = core.ParseEvolutionMode(*mode); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}
	if *env != "" {
		if opts.environment, err = domain.ParseEnvironment(*env); err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return 2
		}
	}
	if opts.hour < -1 || opts.hour > 23 {
		_, _ = fmt.Fprintf(stderr, "hour must be in [0,23] or -1, got %d\n", opts.hour)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	summary, err := run(ctx, cfg, opts, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "slimelab: %v\n", err)
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		_, _ = fmt.Fprintf(stderr, "encode summary: %v\n", err)
		return 1
	}
	return 0
}

type slimeSummary struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Element domain.Element `json:"element"`
	Level   int            `json:"level"`
	Stats   domain.Stats   `json:"stats"`
	Genes   []string       `json:"genes"`
}

type evolutionSummary struct {
	Mode       core.EvolutionMode `json:"mode"`
	Target     string             `json:"target,omitempty"`
	Delta      domain.Stats       `json:"delta"`
	Unit       string             `json:"unit,omitempty"`
	Efficiency float64            `json:"unit_efficiency,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type summary struct {
	Parents       [2]string                   `json:"parents"`
	Offspring     slimeSummary                `json:"offspring"`
	ComboGene     string                      `json:"combo_gene,omitempty"`
	MutationGene  string                      `json:"mutation_gene,omitempty"`
	Evolution     evolutionSummary            `json:"evolution"`
	LineageKey    string                      `json:"lineage_key"`
	FoodRemaining int                         `json:"food_remaining"`
	RosterSize    int                         `json:"roster_size"`
	Operations    map[string]map[string]int64 `json:"operations"`
}

func run(ctx context.Context, cfg config.Config, opts options, stderr io.Writer) (summary, error) {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: core.ParseLogLevel(cfg.LogLevel)}))

	catalogPath := opts.catalogPath
	if catalogPath == "" {
		catalogPath = cfg.Lab.CatalogPath
	}
	catalog := core.NewCatalog()
	if catalogPath != "" {
		var err error
		if catalog, err = core.LoadCatalog(catalogPath); err != nil {
			return summary{}, err
		}
	}

	store, err := core.OpenPersistentStore(ctx, cfg.Storage, core.NewRulesEngineWithCapacity(cfg.Lab.Capacity))
	if err != nil {
		return summary{}, fmt.Errorf("open store: %w", err)
	}
	if closer, ok := store.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}
	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return summary{}, fmt.Errorf("open blob store: %w", err)
	}
	exporter := lineage.NewExporter(blobs)

	var tracer core.Tracer = core.NewOTelTracer(nil)
	if opts.trace {
		tracer = core.NewJSONTracer(stderr)
	}
	metrics := core.NewExpvarMetricsRecorder("")
	svc := core.NewService(store,
		core.WithLogger(core.NewSlogLogger(logger)),
		core.WithMetricsRecorder(metrics),
		core.WithTracer(tracer),
		core.WithRand(core.NewSeededRand(opts.seed)),
		core.WithCatalog(catalog),
		core.WithLineageExporter(exporter),
		core.WithChamberOptions(core.WithMutationRate(cfg.Lab.MutationRate)),
	)

	child, food, err := breed(ctx, svc)
	if err != nil {
		return summary{}, err
	}
	evo, err := evolve(ctx, svc, child, opts)
	if err != nil {
		return summary{}, err
	}
	evolved, ok := svc.GetSlime(child.ID())
	if !ok {
		return summary{}, fmt.Errorf("offspring %s disappeared", child.ID())
	}

	rec, err := exporter.Load(ctx, child.ID())
	if err != nil {
		logger.Warn("lineage record unavailable", "offspring_id", child.ID(), "error", err)
	}
	out := summary{
		Parents:       rec.ParentNames,
		Offspring:     describe(evolved),
		Evolution:     evo,
		LineageKey:    lineage.Key(child.ID()),
		FoodRemaining: food,
		RosterSize:    len(svc.ListSlimes()),
		Operations:    metrics.Snapshot().Results,
	}
	if rec.ComboGene != nil {
		out.ComboGene = rec.ComboGene.Name()
	}
	if rec.MutationGene != nil {
		out.MutationGene = rec.MutationGene.Name()
	}
	return out, nil
}

// breed seeds a fire and an electric parent carrying the Blazing Speed gene
// pair, breeds them to completion and retires both parents. It returns the
// offspring and the food left over.
func breed(ctx context.Context, svc *core.Service) (*domain.Slime, int, error) {
	ember := domain.NewSlime("Ember", domain.ElementFire)
	spark := domain.NewSlime("Spark", domain.ElementElectric)
	for _, g := range []struct {
		slime *domain.Slime
		gene  domain.Gene
	}{
		{ember, domain.NewGene("Fire Gene", domain.Dominant)},
		{ember, domain.NewGene("Speed Gene", domain.Recessive)},
		{spark, domain.NewGene("Speed Gene", domain.Dominant)},
		{spark, domain.NewGene("Fire Gene", domain.Recessive)},
	} {
		if err := g.slime.AddGene(g.gene); err != nil {
			return nil, 0, err
		}
	}
	for _, s := range []*domain.Slime{ember, spark} {
		if _, _, err := svc.CreateSlime(ctx, s); err != nil {
			return nil, 0, fmt.Errorf("seed %s: %w", s.Name(), err)
		}
	}

	inv := domain.NewInventory()
	inv.Add(domain.ResourceFood, startingFood)
	if err := svc.StartBreeding(ctx, ember.ID(), spark.ID(), inv); err != nil {
		return nil, 0, err
	}
	for complete := false; !complete; {
		_, complete = svc.AdvanceBreeding(breedingTick)
	}
	child, _, err := svc.CompleteBreeding(ctx)
	if err != nil {
		return nil, 0, err
	}
	for _, s := range []*domain.Slime{ember, spark} {
		if _, err := svc.DeleteSlime(ctx, s.ID()); err != nil {
			return nil, 0, fmt.Errorf("retire %s: %w", s.Name(), err)
		}
	}
	return child, inv.AmountOf(domain.ResourceFood), nil
}

// evolve raises the offspring to the evolution level and applies the
// requested mode. Ineligibility is reported in the summary rather than as an
// error.
func evolve(ctx context.Context, svc *core.Service, child *domain.Slime, opts options) (evolutionSummary, error) {
	missing := (core.MinEvolutionLevel - child.Level()) * domain.ExperiencePerLevel
	if _, _, err := svc.GainExperience(ctx, child.ID(), missing); err != nil {
		return evolutionSummary{}, err
	}
	item := domain.EvolutionItem{Name: opts.item, Element: child.Element()}
	evo := evolutionSummary{Mode: opts.mode}

	var (
		outcome core.Outcome
		err     error
	)
	switch opts.mode {
	case core.ModeEnvironment:
		env := opts.environment
		if env == "" {
			env = nativeHabitat(child.Element())
		}
		unit, _, uerr := svc.CreateContainmentUnit(ctx, core.ContainmentUnit{Name: "Evolution Pen", Environment: env})
		if uerr != nil {
			return evolutionSummary{}, uerr
		}
		if _, _, uerr := svc.AssignToUnit(ctx, unit.ID, child.ID()); uerr != nil {
			return evolutionSummary{}, uerr
		}
		evo.Unit = unit.ID
		if evo.Efficiency, uerr = svc.UnitEfficiency(ctx, unit.ID); uerr != nil {
			return evolutionSummary{}, uerr
		}
		_, outcome, _, err = svc.EvolveInUnit(ctx, unit.ID, item)
	case core.ModeTime:
		if opts.hour < 0 {
			_, outcome, _, err = svc.EvolveAtCurrentTime(ctx, child.ID(), item)
		} else {
			_, outcome, _, err = svc.Evolve(ctx, child.ID(), item, core.AtHour{Hour: opts.hour})
		}
	case core.ModeAffinity:
		if _, _, aerr := svc.IncreaseAffinity(ctx, child.ID(), domain.MaxAffinity); aerr != nil {
			return evolutionSummary{}, aerr
		}
		_, outcome, _, err = svc.Evolve(ctx, child.ID(), item, core.WithAffinity{})
	default:
		_, outcome, _, err = svc.Evolve(ctx, child.ID(), item, core.LevelTree{})
	}
	if errors.Is(err, domain.ErrInvalidOperation) {
		evo.Error = err.Error()
		return evo, nil
	}
	if err != nil {
		return evolutionSummary{}, err
	}
	evo.Target, evo.Delta = outcome.TargetName, outcome.Delta
	return evo, nil
}

func nativeHabitat(element domain.Element) domain.Environment {
	switch element {
	case domain.ElementFire:
		return domain.EnvironmentVolcanic
	case domain.ElementWater:
		return domain.EnvironmentAquatic
	case domain.ElementElectric:
		return domain.EnvironmentStorm
	default:
		return domain.EnvironmentStandard
	}
}

func describe(s *domain.Slime) slimeSummary {
	return slimeSummary{
		ID:      s.ID(),
		Name:    s.Name(),
		Element: s.Element(),
		Level:   s.Level(),
		Stats:   s.Stats(),
		Genes:   s.GeneNames(),
	}
}
