package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/dailylesson-backend/internal/app"
	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/services"
)

type options struct {
	from        string
	days        int
	lessons     []string
	ages        []int
	tones       []string
	languages   []string
	concurrency int
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "pregenerate",
		Short: "Warm the variation store for upcoming days",
		Long: "Resolves every age, tone and language combination for a run of days so the first " +
			"request for each variation is a cache hit. Existing variations are skipped.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.from, "from", "", "first date YYYY-MM-DD (default today, UTC)")
	f.IntVar(&opts.days, "days", 7, "number of consecutive days")
	f.StringSliceVar(&opts.lessons, "lesson", nil, "lesson ids (default: the lesson scheduled for each day)")
	f.IntSliceVar(&opts.ages, "ages", services.DefaultPregenAges, "ages to generate")
	f.StringSliceVar(&opts.tones, "tones", services.DefaultPregenTones, "tones to generate")
	f.StringSliceVar(&opts.languages, "languages", services.DefaultPregenLanguages, "languages to generate")
	f.IntVar(&opts.concurrency, "concurrency", 4, "parallel resolutions")
	return cmd
}

// dateRange returns days consecutive civil dates starting at from.
func dateRange(from string, days int, now time.Time) ([]string, error) {
	start := domain.CivilDate(now.UTC())
	if from != "" {
		d, err := domain.ParseDate(from)
		if err != nil {
			return nil, fmt.Errorf("--from: %w", err)
		}
		start = d
	}
	if days <= 0 {
		return nil, fmt.Errorf("--days must be positive")
	}
	out := make([]string, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, start.AddDate(0, 0, i).Format(domain.DateLayout))
	}
	return out, nil
}

func run(cmd *cobra.Command, opts options) error {
	dates, err := dateRange(opts.from, opts.days, time.Now())
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := app.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	core, err := app.NewCore(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		core.Close(closeCtx)
	}()

	report, err := services.NewPregenerator(core.Services.Resolver, log).Run(ctx, services.PregenerateRequest{
		LessonIDs:   opts.lessons,
		Dates:       dates,
		Ages:        opts.ages,
		Tones:       opts.tones,
		Languages:   opts.languages,
		Concurrency: opts.concurrency,
	})
	printReport(cmd, dates, report)
	return err
}

func printReport(cmd *cobra.Command, dates []string, r services.PregenerateReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pregenerated %s..%s\n", dates[0], dates[len(dates)-1])
	fmt.Fprintf(out, "  total:     %d\n", r.Total)
	fmt.Fprintf(out, "  generated: %d\n", r.Generated)
	fmt.Fprintf(out, "  existing:  %d\n", r.Existing)
	fmt.Fprintf(out, "  no lesson: %d\n", r.NoLesson)
	fmt.Fprintf(out, "  failed:    %d\n", r.Failed)
	keys := make([]string, 0, len(r.Failures))
	for k := range r.Failures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "    %s: %s\n", k, r.Failures[k])
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
