package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/briefing-studio/internal/archive"
	"github.com/kingrea/briefing-studio/internal/briefing"
	"github.com/kingrea/briefing-studio/internal/stubserver"
	"github.com/kingrea/briefing-studio/internal/tui"
	"github.com/kingrea/briefing-studio/internal/wizard"
)

func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [step]",
		Short: "Open the dashboard, or the wizard at a given step",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			route := wizard.DashboardRoute
			if len(args) == 1 {
				// Invalid steps are passed through; the wizard redirects to step 1.
				route = wizard.RoutePrefix + "/" + args[0]
			}
			return c.runTUI(cmd.Context(), route)
		},
	}
}

func (c *cli) runTUI(ctx context.Context, route string) error {
	p, err := c.open()
	if err != nil {
		return err
	}
	defer p.close()
	app, err := tui.NewApp(p.dir, tui.WithRoute(route), tui.WithContext(ctx))
	if err != nil {
		return err
	}
	defer app.Close()

	// Run blocks until the user quits
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List briefings stored by the Briefing Service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.open()
			if err != nil {
				return err
			}
			defer p.close()
			summaries, err := p.client().ListBriefings(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(c.stdout, "No briefings yet.")
				return nil
			}
			w := tabwriter.NewWriter(c.stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tCLIENT\tTITLE")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.CreatedLabel(), s.ClientName, s.Title)
			}
			return w.Flush()
		},
	}
}

func (c *cli) newCmd() *cobra.Command {
	values := make(map[briefing.Field]*string, len(briefing.Fields))
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a briefing without the TUI",
		Long: `new fills the wizard from flags, walks it through its three steps, and
submits the draft. The generated text is printed and saved to the archive.

Choice fields take catalog values: --industry fintech, --timeline 3-months,
--budget 10k-50k.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.open()
			if err != nil {
				return err
			}
			defer p.close()

			opts := []wizard.Option{}
			if p.journal != nil {
				opts = append(opts, wizard.WithJournal(p.journal))
			}
			w := wizard.New(opts...)
			for _, f := range briefing.Fields {
				w.SetField(f, *values[f])
			}
			for w.Step() < briefing.LastStep {
				if !w.Advance() {
					return missingError(w)
				}
			}
			if err := w.Submit(cmd.Context(), p.client()); err != nil {
				if errors.Is(err, wizard.ErrIncomplete) {
					return missingError(w)
				}
				return fmt.Errorf("generate briefing: %w", err)
			}
			state := w.Snapshot()
			fmt.Fprintln(c.stdout, w.Content())
			if p.cfg.ArchiveEnabled() {
				entry, err := archive.NewStore(p.cfg.ArchiveDir()).Save(state.Draft, state.Result)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.stderr, "saved %s\n", entry.ID)
			}
			return nil
		},
	}
	flagNames := map[briefing.Field]string{
		briefing.FieldCompanyName:    "company",
		briefing.FieldIndustry:       "industry",
		briefing.FieldTargetAudience: "audience",
		briefing.FieldProblem:        "problem",
		briefing.FieldSolution:       "solution",
		briefing.FieldObjectives:     "objectives",
		briefing.FieldTimeline:       "timeline",
		briefing.FieldBudget:         "budget",
	}
	for _, f := range briefing.Fields {
		values[f] = new(string)
		cmd.Flags().StringVar(values[f], flagNames[f], "", briefing.PromptFor(f).Label)
	}
	return cmd
}

func missingError(w *wizard.Wizard) error {
	step := w.Step()
	missing := w.Draft().Missing(step)
	names := make([]string, len(missing))
	for i, f := range missing {
		names[i] = string(f)
	}
	return fmt.Errorf("step %d is incomplete: missing %s", int(step), strings.Join(names, ", "))
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived briefing (id or unique prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.open()
			if err != nil {
				return err
			}
			defer p.close()
			entry, err := archive.NewStore(p.cfg.ArchiveDir()).Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "%s\n%s · %s\n\n%s\n", entry.Title, entry.Company, entry.CreatedAt.Local().Format("2006-01-02 15:04"), entry.Body)
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Render an archived briefing as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.open()
			if err != nil {
				return err
			}
			defer p.close()
			entry, err := archive.NewStore(p.cfg.ArchiveDir()).Load(args[0])
			if err != nil {
				return err
			}
			html, err := archive.ExportHTML(entry)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = c.stdout.Write(html)
				return err
			}
			if err := os.WriteFile(out, html, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(c.stderr, "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func (c *cli) tokenCmd() *cobra.Command {
	var clearToken bool
	cmd := &cobra.Command{
		Use:   "token [value]",
		Short: "Store or clear the bearer token sent to the Briefing Service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.open()
			if err != nil {
				return err
			}
			defer p.close()
			switch {
			case clearToken:
				if err := p.tokens.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(c.stdout, "token cleared")
			case len(args) == 1:
				if err := p.tokens.Save(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "token saved to %s\n", p.tokens.Path())
			default:
				if p.tokens.Token() == "" {
					fmt.Fprintln(c.stdout, "no token set")
				} else {
					fmt.Fprintln(c.stdout, "token set")
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearToken, "clear", false, "remove the stored token")
	return cmd
}

func (c *cli) endpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoint [url]",
		Short: "Show or persist the Briefing Service URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.open()
			if err != nil {
				return err
			}
			defer p.close()
			if len(args) == 1 {
				if err := p.cfg.SetEndpoint(args[0]); err != nil {
					return err
				}
			}
			fmt.Fprintln(c.stdout, p.cfg.Endpoint())
			return nil
		},
	}
}

func (c *cli) stubCmd() *cobra.Command {
	var port int
	var token string
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run a local stand-in for the Briefing Service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.open()
			if err != nil {
				return err
			}
			defer p.close()
			settings := stubserver.DefaultSettings()
			if cmd.Flags().Changed("port") {
				settings.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			srv := stubserver.New(settings, stubserver.WithLogger(p.logger), stubserver.WithToken(token))
			if err := srv.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "stub Briefing Service on %s (API_ENDPOINT=%s)\n", srv.Addr(), srv.BaseURL())
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVar(&port, "port", stubserver.DefaultPort, "TCP port ("+stubserver.EnvPort+" also applies; 0 picks a free port)")
	cmd.Flags().StringVar(&token, "token", "", "require this bearer token")
	return cmd
}
