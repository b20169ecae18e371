// Package main provides the CLI entrypoint for emorun.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/emorun/internal/classifier"
	"github.com/verte-zerg/emorun/internal/config"
	"github.com/verte-zerg/emorun/internal/emotion"
	"github.com/verte-zerg/emorun/internal/game"
	"github.com/verte-zerg/emorun/internal/generator"
	"github.com/verte-zerg/emorun/internal/logging"
	"github.com/verte-zerg/emorun/internal/model"
	"github.com/verte-zerg/emorun/internal/stats"
	"github.com/verte-zerg/emorun/internal/statsui"
	"github.com/verte-zerg/emorun/internal/store"
	"github.com/verte-zerg/emorun/internal/tui"
)

const (
	defaultCurveWindow = 10
	defaultTickMs      = 50
)

var (
	playClassifier string
	playModel      string
	playBaseURL    string
	playMinChars   int
	playPenalty    float64
	playTargets    string
	playTickMs     int
	playNoSave     bool
	playLogLevel   string
	playLogFile    string

	statsClassifier  string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

// playSettings is the resolved configuration of a play session.
type playSettings struct {
	Game       game.Config
	Classifier classifier.Config
	Tick       time.Duration
	LogLevel   string
	LogPath    string
	Save       bool
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "emorun",
		Short:         "Emotion speedrun: make the classifier feel every target",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playClassifier, "classifier", classifier.BackendLexicon, "classifier backend (lexicon, openai)")
	rootCmd.Flags().StringVar(&playModel, "model", "", "OpenAI model for the openai backend")
	rootCmd.Flags().StringVar(&playBaseURL, "base-url", "", "OpenAI-compatible API base URL")
	rootCmd.Flags().IntVar(&playMinChars, "min-chars", game.DefaultMinChars, "submissions must be longer than this many characters")
	rootCmd.Flags().Float64Var(&playPenalty, "penalty", game.DefaultPenalty.Seconds(), "seconds added per miss")
	rootCmd.Flags().StringVar(&playTargets, "targets", emotion.JoinList(emotion.Targets()), "comma-separated target emotions")
	rootCmd.Flags().IntVar(&playTickMs, "tick-ms", defaultTickMs, "timer refresh interval in milliseconds")
	rootCmd.Flags().BoolVar(&playNoSave, "no-save", false, "do not record completed runs")
	rootCmd.Flags().StringVar(&playLogLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&playLogFile, "log-file", config.DefaultLogPath(), "log file path (empty disables logging)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newEmotionsCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	settings, err := resolvePlaySettings(cmd, fileCfg, envCfg)
	if err != nil {
		return err
	}

	log, err := logging.New(settings.LogLevel, settings.LogPath)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		if serr := log.Sync(); serr != nil {
			// Best-effort flush.
			_ = serr
		}
	}()

	c, err := classifier.New(settings.Classifier)
	if err != nil {
		return err
	}

	var st *store.Store
	if settings.Save {
		st, err = store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend := backendName(settings.Classifier)
	log.Infow("starting session",
		"classifier", backend,
		"targets", emotion.JoinList(settings.Game.Targets),
		"min_chars", settings.Game.MinChars,
		"penalty", settings.Game.Penalty,
		"save", settings.Save,
	)
	machine := game.NewMachine(settings.Game, game.NewGateway(c),
		game.WithShuffler(generator.New()),
		game.WithLogger(log.With("component", "game")),
	)
	ui := tui.NewModel(ctx, machine, c, tui.Options{
		Store:   st,
		Backend: backend,
		Tick:    settings.Tick,
		Logger:  log.With("component", "tui"),
	})
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return ui.Err()
}

// resolvePlaySettings layers flags over environment over file over defaults.
func resolvePlaySettings(cmd *cobra.Command, fileCfg config.FileConfig, envCfg config.EnvConfig) (playSettings, error) {
	applyIntConfig(cmd, "min-chars", &playMinChars, fileCfg.Game.MinChars)
	applyFloatConfig(cmd, "penalty", &playPenalty, fileCfg.Game.PenaltySeconds)
	applyStringConfig(cmd, "targets", &playTargets, fileCfg.Game.Targets)
	applyIntConfig(cmd, "tick-ms", &playTickMs, fileCfg.Game.TickMs)
	applyStringConfig(cmd, "classifier", &playClassifier, fileCfg.Classifier.Backend)
	applyStringConfig(cmd, "model", &playModel, fileCfg.Classifier.Model)
	applyStringConfig(cmd, "base-url", &playBaseURL, fileCfg.Classifier.BaseURL)
	applyStringConfig(cmd, "log-level", &playLogLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &playLogFile, fileCfg.Log.Path)

	applyEnvConfig(cmd, "classifier", &playClassifier, envCfg.Classifier)
	applyEnvConfig(cmd, "model", &playModel, envCfg.Model)
	applyEnvConfig(cmd, "base-url", &playBaseURL, envCfg.OpenAIBaseURL)
	applyEnvConfig(cmd, "log-level", &playLogLevel, envCfg.LogLevel)

	if err := validatePlayFlags(); err != nil {
		return playSettings{}, err
	}
	targets, err := emotion.ParseList(playTargets)
	if err != nil {
		return playSettings{}, fmt.Errorf("invalid --targets: %w", err)
	}
	gameCfg := game.Config{
		MinChars: playMinChars,
		Penalty:  time.Duration(math.Round(playPenalty * float64(time.Second))),
		Targets:  targets,
	}
	if err := gameCfg.Validate(); err != nil {
		return playSettings{}, err
	}
	if _, err := logging.ParseLevel(playLogLevel); err != nil {
		return playSettings{}, err
	}
	return playSettings{
		Game: gameCfg,
		Classifier: classifier.Config{
			Backend: playClassifier,
			APIKey:  envCfg.OpenAIKey,
			Model:   playModel,
			BaseURL: playBaseURL,
		},
		Tick:     time.Duration(playTickMs) * time.Millisecond,
		LogLevel: playLogLevel,
		LogPath:  playLogFile,
		Save:     !playNoSave,
	}, nil
}

func validatePlayFlags() error {
	if playMinChars < 0 {
		return fmt.Errorf("--min-chars must be >= 0")
	}
	if playPenalty < 0 || math.IsNaN(playPenalty) || math.IsInf(playPenalty, 0) {
		return fmt.Errorf("--penalty must be a non-negative number of seconds")
	}
	if playTickMs <= 0 {
		return fmt.Errorf("--tick-ms must be > 0")
	}
	return nil
}

func backendName(cfg classifier.Config) string {
	name := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if name == "" {
		name = classifier.BackendLexicon
	}
	return name
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless path exists.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func newEmotionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emotions",
		Short: "List target emotions",
		Args:  cobra.NoArgs,
		RunE:  runEmotionsCmd,
	}
}

func runEmotionsCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	for _, kind := range emotion.Targets() {
		if _, err := fmt.Fprintf(out, "%-9s %s\n", kind, emotion.Display(kind)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(out, "\n%s is never a target; predicting it is always a miss.\n", emotion.Display(emotion.Neutral)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsClassifier, "classifier", "", "classifier filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsCurveWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfigFromFlags()
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return printReport(cmd, st, cfg)
	}
	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func statsConfigFromFlags() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--window must be >= 1")
	}
	return model.StatsConfig{
		Classifier:  statsClassifier,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func printReport(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Runs, report.EmotionsAll); err != nil {
		return err
	}
	if len(report.Runs) == 0 {
		return nil
	}
	if err := stats.RenderCurve(out, report.Runs, cfg.CurveWindow); err != nil {
		return err
	}
	return stats.RenderEmotionTable(out, report.EmotionsWindow)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// applyEnvConfig overrides target with a non-empty environment value.
func applyEnvConfig(cmd *cobra.Command, name string, target *string, value string) {
	if value == "" {
		return
	}
	applyStringConfig(cmd, name, target, &value)
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# emorun configuration
# Uncomment a value to enable it. Environment variables override config
# values and CLI flags override both. The OpenAI API key is only read from
# OPENAI_API_KEY (a .env file in the working directory is honored).

[game]
# min-chars = %d            # Submissions must be longer than this
# penalty-seconds = %.1f    # Seconds added per miss
# targets = %q
# tick-ms = %d              # Timer refresh interval

[classifier]
# backend = %q         # lexicon or openai (EMORUN_CLASSIFIER)
# model = %q      # OpenAI model (EMORUN_OPENAI_MODEL)
# base-url = ""             # OpenAI-compatible endpoint (OPENAI_BASE_URL)

[log]
# level = %q              # debug, info, warn, error (EMORUN_LOG_LEVEL)
# path = %q
`,
		game.DefaultMinChars,
		game.DefaultPenalty.Seconds(),
		emotion.JoinList(emotion.Targets()),
		defaultTickMs,
		classifier.BackendLexicon,
		classifier.DefaultOpenAIModel,
		logging.DefaultLevel,
		config.DefaultLogPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
