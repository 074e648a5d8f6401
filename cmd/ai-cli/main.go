package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/brianbirrell/ai-cli/internal/cli"
	"github.com/brianbirrell/ai-cli/internal/config"
	"github.com/brianbirrell/ai-cli/internal/hook"
	"github.com/brianbirrell/ai-cli/internal/hook/handlers"
	"github.com/brianbirrell/ai-cli/internal/input"
	"github.com/brianbirrell/ai-cli/internal/llm"
	"github.com/brianbirrell/ai-cli/internal/llm/openai"
	"github.com/brianbirrell/ai-cli/internal/logger"
	"github.com/brianbirrell/ai-cli/internal/version"

	"github.com/spf13/cobra"
)

type options struct {
	files       []string
	prompt      string
	model       string
	baseURL     string
	apiKey      string
	temperature float64
	timeout     uint64
	verbose     int
	showVersion bool
	configPath  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "ai-cli",
		Short: "Send files or stdin to an OpenAI-compatible chat endpoint",
		Long: "ai-cli sends the contents of files (or stdin) as a single user message to an\n" +
			"OpenAI-compatible /chat/completions endpoint and prints the reply as it streams.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				_, err := io.WriteString(cmd.OutOrStdout(), version.Get().String())
				return err
			}
			return run(cmd, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringArrayVarP(&opts.files, "files", "f", nil, "Input file(s) to process, in order (repeatable)")
	flags.StringVarP(&opts.prompt, "prompt", "p", "", "Prompt to provide context")
	flags.StringVarP(&opts.model, "model", "m", "", "Model to use")
	flags.StringVar(&opts.baseURL, "base-url", "", "Base URL for the API")
	flags.StringVar(&opts.apiKey, "api-key", "", "API key (if needed)")
	flags.Float64Var(&opts.temperature, "temperature", 0, "LLM temperature between 0.0 (deterministic) and 2.0 (creative)")
	flags.Uint64Var(&opts.timeout, "timeout", 0, "First-chunk timeout in seconds: max wait from sending the request to the first response byte (default: 300, 0 disables)")
	flags.CountVarP(&opts.verbose, "verbose", "v", "Enable verbose logging (-v for debug, -vv for request/response details)")
	flags.BoolVar(&opts.showVersion, "version", false, "Show version information")
	flags.StringVar(&opts.configPath, "config", "", "Config file path (default: ~/.config/ai-cli/config.toml)")

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := version.Get().Format(output)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json, yaml or short")
	return cmd
}

// overrides collects the flags the user actually set.
func (o *options) overrides(cmd *cobra.Command) config.Overrides {
	var ov config.Overrides
	flags := cmd.Flags()
	if flags.Changed("model") {
		ov.Model = &o.model
	}
	if flags.Changed("base-url") {
		ov.BaseURL = &o.baseURL
	}
	if flags.Changed("api-key") {
		ov.APIKey = &o.apiKey
	}
	if flags.Changed("prompt") {
		ov.Prompt = &o.prompt
	}
	if flags.Changed("temperature") {
		ov.Temperature = &o.temperature
	}
	if flags.Changed("timeout") {
		ov.TimeoutSecs = &o.timeout
	}
	return ov
}

func newLogger(w io.Writer, verbosity int) *logger.Logger {
	log := logger.NewLogger(w, logger.LevelFromVerbosity(verbosity))
	log.SetColorMode(input.IsTerminal(w))
	return log
}

func run(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stderr := cmd.ErrOrStderr()

	log := newLogger(stderr, opts.verbose)
	log.Debug("Starting ai-cli (verbosity %d)", opts.verbose)
	log.Trace("Command line arguments: files=%v prompt_set=%t api_key_set=%t", opts.files, cmd.Flags().Changed("prompt"), cmd.Flags().Changed("api-key"))

	eff, err := loadConfig(cmd, opts, log)
	if err != nil {
		return err
	}

	agg := input.NewAggregator(cmd.InOrStdin(), stderr, log)
	body, err := agg.Read(opts.files, eff.Prompt)
	if err != nil {
		return err
	}
	log.Debug("Input length: %d characters", len(body))

	log.Info("Building request with configuration")
	log.Debug("Using model: %s, base_url: %s, temperature: %s, first-chunk timeout: %s",
		eff.Model, eff.BaseURL, formatTemperature(eff.Temperature), eff.FirstChunkTimeout)
	req := llm.NewChatRequest(eff.Model, eff.Temperature, body)

	hooks := hook.NewManager()
	hooks.Register(handlers.NewLoggingHandler(log))
	stats := handlers.NewStatsHandler()
	hooks.Register(stats)

	client := openai.NewClient(openai.Config{
		BaseURL:           eff.BaseURL,
		APIKey:            eff.APIKey,
		Model:             eff.Model,
		FirstChunkTimeout: eff.FirstChunkTimeout,
		Logger:            log,
		Hooks:             hooks,
	})

	log.Info("Sending request to API")
	reader, err := client.ChatStream(ctx, req)
	if err != nil {
		return err
	}

	renderer := cli.NewStreamRenderer(cli.NewStreamingWriter(cmd.OutOrStdout()))
	if _, err := renderer.StreamContent(ctx, reader); err != nil {
		return err
	}

	log.Info("Response streaming completed: %d chunks, %d bytes, %d frames, %d malformed, %d done markers",
		stats.Chunks(), stats.Bytes(), stats.Frames(), stats.Malformed(), stats.DoneMarkers())
	return nil
}

func loadConfig(cmd *cobra.Command, opts *options, log *logger.Logger) (config.Effective, error) {
	path := opts.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return config.Effective{}, err
		}
	}
	log.Debug("Config path: %s", path)

	if loaded, err := config.LoadDotEnv(filepath.Dir(path)); err != nil {
		return config.Effective{}, err
	} else if loaded {
		log.Debug("Loaded environment from %s", filepath.Join(filepath.Dir(path), ".env"))
	}

	file, created, err := config.LoadOrCreate(path)
	if err != nil {
		return config.Effective{}, err
	}
	if created {
		log.Info("Config file not found, created default configuration at %s", path)
	}

	eff, err := config.Resolve(file, opts.overrides(cmd))
	if err != nil {
		return config.Effective{}, err
	}

	log.Info("Final configuration: model=%s, base_url=%s, temperature=%s, timeout=%s",
		eff.Model, eff.BaseURL, formatTemperature(eff.Temperature), eff.FirstChunkTimeout)
	if eff.HasAPIKey() {
		log.Debug("API key is configured")
	} else {
		log.Debug("No API key configured")
	}
	return eff, nil
}

func formatTemperature(t *float64) string {
	if t == nil {
		return "server default"
	}
	return fmt.Sprintf("%.2f", *t)
}
