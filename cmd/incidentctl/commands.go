package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-analytics/internal/api/dto"
	"github.com/spec-kit/incident-analytics/internal/auth"
	"github.com/spec-kit/incident-analytics/internal/bootstrap"
	"github.com/spec-kit/incident-analytics/internal/config"
	"github.com/spec-kit/incident-analytics/internal/observability"
	"github.com/spec-kit/incident-analytics/internal/service"
)

const defaultTimeout = 2 * time.Minute

type cliOptions struct {
	driver     string
	sqlitePath string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "incidentctl",
		Short:         "Seed and query the incident analytics store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.driver, "driver", "", "store driver (postgres or sqlite), overrides STORE_DRIVER")
	root.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite-path", "", "sqlite database file, overrides SQLITE_PATH")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "deadline for the whole command")

	root.AddCommand(
		newSeedCmd(opts),
		newReportCmd(opts),
		newRankCmd(opts),
		newVulnsCmd(opts),
		newTokenCmd(),
	)
	return root
}

// withRuntime loads configuration, applies flag overrides and runs fn against a fresh runtime.
func withRuntime(cmd *cobra.Command, opts *cliOptions, fn func(ctx context.Context, rt *bootstrap.Runtime) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}

func loadConfig(opts *cliOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.driver != "" {
		cfg.Store.Driver = opts.driver
	}
	if opts.sqlitePath != "" {
		cfg.SQLite.Path = opts.sqlitePath
	}
	// stdout carries command output.
	cfg.Logger.Output = "stderr"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSeedCmd(opts *cliOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the store content with a seed document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *bootstrap.Runtime) error {
				result, err := rt.Seeds.LoadFile(ctx, file)
				if err != nil {
					return err
				}
				rt.Logger.Info("seed complete", zap.String("file", file))
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"customers":      result.Customers,
					"employees":      result.Employees,
					"incident_types": result.IncidentTypes,
					"tickets":        result.Tickets,
					"contacts":       result.Contacts,
					"back_filled":    result.BackFilled,
				})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "datos.json", "seed document path")
	return cmd
}

func newReportCmd(opts *cliOptions) *cobra.Command {
	var section string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the analysis report as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *bootstrap.Runtime) error {
				var (
					out any
					err error
				)
				switch section {
				case "", "all":
					out, err = rt.Reports.Report(ctx)
				case "global":
					out, err = rt.Reports.Global(ctx)
				case "charts":
					out, err = rt.Reports.Charts(ctx)
				default:
					out, err = rt.Reports.Group(ctx, section)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().StringVar(&section, "section", "all", "all, global, charts or a group dimension")
	return cmd
}

func newRankCmd(opts *cliOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:       "rank <view>",
		Short:     "Print a Top-N ranking",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(service.RankingCustomers), string(service.RankingIncidentTypes), string(service.RankingEmployees)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *bootstrap.Runtime) error {
				n := limit
				if !cmd.Flags().Changed("limit") {
					n = rt.Reports.DefaultTopN()
				}
				items, err := rt.Reports.Ranking(ctx, service.RankingView(args[0]), n)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dto.RankingResponse{View: args[0], Limit: n, Items: items})
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "ranking size (defaults to ANALYSIS_TOP_N)")
	return cmd
}

func newVulnsCmd(opts *cliOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "vulns",
		Short: "Print the latest published vulnerabilities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *bootstrap.Runtime) error {
				records := rt.Vulnerabilities.Latest(ctx, limit)
				return printJSON(cmd.OutOrStdout(), dto.NewVulnerabilitiesResponse(records))
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of records (defaults to FEED_LIMIT)")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var subject, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
			token, expiresAt, err := tokens.GenerateToken(subject, auth.Role(role))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"access_token": token,
				"token_type":   "Bearer",
				"expires_at":   expiresAt.UTC(),
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleAnalyst), "analyst or admin")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
