package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rc-analytics/internal/analytics"
	"rc-analytics/internal/config"
	"rc-analytics/internal/report"
	"rc-analytics/internal/ringcentral"
	"rc-analytics/pkg/logger"
)

// deps is what an export run needs from the environment.
type deps struct {
	Source   report.Source
	Company  string
	Location *time.Location
	Now      func() time.Time
}

type openFunc func(ctx context.Context) (deps, error)

// openFromEnv builds the vendor client from env (and .env when present).
func openFromEnv(ctx context.Context) (deps, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadVendor()
	if err != nil {
		return deps{}, err
	}
	slog.SetDefault(logger.New(cfg.App.Env))

	rc, err := ringcentral.NewClient(ctx, ringcentral.Config{
		ServerURL:    cfg.RingCentral.ServerURL,
		ClientID:     cfg.RingCentral.ClientID,
		ClientSecret: cfg.RingCentral.ClientSecret,
		UserJWT:      cfg.RingCentral.UserJWT,
		Timeout:      cfg.RingCentral.HTTPTimeout,
	})
	if err != nil {
		return deps{}, err
	}
	svc, err := analytics.NewService(rc, analytics.Options{
		TimeZone:             cfg.RingCentral.TimeZone,
		ExtensionConcurrency: cfg.RingCentral.ExtensionConcurrency,
	})
	if err != nil {
		return deps{}, err
	}
	return deps{Source: svc, Company: cfg.Report.CompanyName, Location: svc.Location(), Now: svc.Now}, nil
}

type exportOptions struct {
	from    string
	to      string
	format  string
	out     string
	user    string
	sort    string
	order   string
	company string
}

func newExportCmd(open openFunc) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a call analytics report to a file",
		Long: "Fetches the call summary and daily volume for the range and writes them as csv, xlsx or pdf. " +
			"Without --out the file is named like the dashboard download.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, open, opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "start date (YYYY-MM-DD); defaults to the first of the month")
	cmd.Flags().StringVar(&opts.to, "to", "", "end date (YYYY-MM-DD); defaults to today")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "csv, xlsx or pdf")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output path")
	cmd.Flags().StringVar(&opts.user, "user", "", "only include this extension number or user id")
	cmd.Flags().StringVar(&opts.sort, "sort", "calls", "sort users by name or calls")
	cmd.Flags().StringVar(&opts.order, "order", "desc", "asc or desc")
	cmd.Flags().StringVar(&opts.company, "company", "", "company name on the report (overrides REPORT_COMPANY_NAME)")
	return cmd
}

func runExport(cmd *cobra.Command, open openFunc, opts exportOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := open(ctx)
	if err != nil {
		return err
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	company := d.Company
	if opts.company != "" {
		company = opts.company
	}

	q := url.Values{}
	for k, v := range map[string]string{"from": opts.from, "to": opts.to, "user": opts.user, "sort": opts.sort, "order": opts.order} {
		if v != "" {
			q.Set(k, v)
		}
	}

	ts := now()
	if d.Location != nil {
		ts = ts.In(d.Location)
	}
	rep, err := report.Build(ctx, d.Source, q, company, ts, d.Location)
	if err != nil {
		return err
	}

	path := opts.out
	if path == "" {
		path = report.Filename(company, format, ts)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.Write(f, format, rep); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d users, %s)\n", path, len(rep.Users), rep.PeriodLabel())
	return nil
}
