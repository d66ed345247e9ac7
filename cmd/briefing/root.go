package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/briefing-studio/internal/briefingapi"
	"github.com/kingrea/briefing-studio/internal/config"
	"github.com/kingrea/briefing-studio/internal/logbook"
	"github.com/kingrea/briefing-studio/internal/logging"
	"github.com/kingrea/briefing-studio/internal/session"
)

// cli carries the flags and writers shared by every subcommand.
type cli struct {
	projectDir string
	stdout     io.Writer
	stderr     io.Writer
}

// project is the loaded state of one project directory.
type project struct {
	dir     string
	cfg     *config.Config
	journal *logbook.Logbook
	logger  *logging.Logger
	tokens  *session.Store
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "briefing",
		Short: "Startup briefing wizard",
		Long: `briefing collects a startup's details in three steps, sends them to the
Briefing Service for generation, and keeps the generated briefings locally.

Run without arguments to open the dashboard.`,
		Args:          cobra.NoArgs,
		RunE:          func(cmd *cobra.Command, _ []string) error { return c.runTUI(cmd.Context(), "") },
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&c.projectDir, "project", "p", "", "project directory holding .briefing (defaults to cwd)")

	root.AddCommand(
		c.tuiCmd(),
		c.listCmd(),
		c.newCmd(),
		c.showCmd(),
		c.exportCmd(),
		c.tokenCmd(),
		c.endpointCmd(),
		c.stubCmd(),
	)
	return root
}

// open resolves the project directory, creates .briefing when missing, and
// loads its configuration.
func (c *cli) open() (*project, error) {
	dir := c.projectDir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	if err := config.InitBriefingDir(abs); err != nil {
		return nil, fmt.Errorf("init .briefing: %w", err)
	}
	cfg, err := config.NewConfig(abs)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	p := &project{dir: abs, cfg: cfg, tokens: session.NewStore(cfg.SessionTokenPath())}
	if lb, err := logbook.New(cfg.JourneyLogPath()); err == nil {
		p.journal = lb
	}
	if logger, err := logging.New(abs); err == nil {
		p.logger = logger
	}
	return p, nil
}

func (p *project) client() *briefingapi.Client {
	return briefingapi.New(p.cfg.Endpoint(), p.tokens,
		briefingapi.WithLogger(p.logger),
		briefingapi.WithTimeout(p.cfg.Timeout()))
}

func (p *project) close() {
	_ = p.logger.Close()
}
