package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/jryio/statusbot/command"
	"github.com/jryio/statusbot/directory"
	"github.com/jryio/statusbot/metrics"
)

var app = cli.Command{
	Name:  "statusbot",
	Usage: "Set virtual office desk statuses from chat",

	Flags: []cli.Flag{
		&flagConfig,
		&flagLog,
		&flagLogFormat,
	},
	Commands: []*cli.Command{
		{
			Name:   "serve",
			Usage:  "Serve the chat webhook (default)",
			Action: cliRun,
		},
		{
			Name:      "parse",
			Usage:     "Print the commands parsed from each argument",
			ArgsUsage: "LINE...",
			Action:    cliParse,
		},
		{
			Name:   "desks",
			Usage:  "Fetch the office desks once and print the directory",
			Action: cliDesks,
		},
	},
	Action: cliRun,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := app.Run(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
	}
}

// loadConfig loads the config named by the command's flags.
func loadConfig(ctx context.Context, cmd *cli.Command) (*Config, error) {
	loadDotenv(ctx)
	return openConfig(ctx, cmd.String("config"), cmd.IsSet("config"))
}

// openConfig loads the config in file. If the file does not exist and was not
// named explicitly, the config comes from the environment alone.
func openConfig(ctx context.Context, file string, named bool) (*Config, error) {
	var r io.Reader = strings.NewReader("")
	f, err := os.Open(file)
	switch {
	case err == nil:
		defer f.Close()
		r = f
	case !named && errors.Is(err, fs.ErrNotExist):
		slog.InfoContext(ctx, "no config file, using environment", slog.String("file", file))
	default:
		return nil, fmt.Errorf("couldn't open config file: %w", err)
	}
	cfg, _, err := Load(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("couldn't load config: %w", err)
	}
	return cfg, nil
}

func cliRun(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	emotes, err := loadEmoji(cfg.Emoji.Table)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 30 * time.Second}
	off := officeClient(&cfg.Office, client)
	m := newMetrics()
	robo := &Robot{
		cmd:     commandRobot(cfg, off, chatClient(&cfg.Chat, client), emotes, m),
		source:  off,
		token:   cfg.Chat.Token,
		refresh: fseconds(cfg.Directory.Refresh),
		metrics: m,
	}
	slog.InfoContext(ctx, "starting",
		slog.String("office", cfg.Office.Site),
		slog.String("chat", cfg.Chat.Site),
		slog.Any("home", robo.cmd.Home),
		slog.Int("emoji", emotes.Len()),
	)
	return robo.Run(ctx, cfg.HTTP.Listen)
}

func cliParse(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	file := ""
	if cmd.IsSet("config") {
		cfg, err := loadConfig(ctx, cmd)
		if err != nil {
			return err
		}
		file = cfg.Emoji.Table
	}
	emotes, err := loadEmoji(file)
	if err != nil {
		return err
	}
	for _, line := range cmd.Args().Slice() {
		c := command.Parse(line, emotes)
		switch c.Kind {
		case command.SetStatus:
			fmt.Printf("%s\t%q\n", c.Kind, c.Status.Render(emotes))
		default:
			fmt.Printf("%s\t%q\n", c.Kind, c.Arg)
		}
	}
	return nil
}

func cliDesks(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 30 * time.Second}
	dir := directory.New()
	if err := dir.Refresh(ctx, officeClient(&cfg.Office, client)); err != nil {
		return err
	}
	type row struct {
		name string
		e    directory.Entry
	}
	var rows []row
	for name, e := range dir.All() {
		rows = append(rows, row{name, e})
	}
	slices.SortFunc(rows, func(a, b row) int { return cmp.Compare(a.name, b.name) })
	for _, r := range rows {
		fmt.Printf("%s\t%d\t(%d, %d)\t%s\n", r.name, r.e.Desk, r.e.Pos.X, r.e.Pos.Y, r.e.Name)
	}
	return nil
}

var (
	flagConfig = cli.StringFlag{
		Name:       "config",
		Usage:      "TOML config file",
		Value:      "statusbot.toml",
		Persistent: true,
		Action: func(ctx context.Context, cmd *cli.Command, s string) error {
			i, err := os.Stat(s)
			if err != nil {
				return err
			}
			if !i.Mode().IsRegular() {
				return errors.New("config must be a regular file")
			}
			return nil
		},
	}

	flagLog = cli.StringFlag{
		Name:       "log",
		Usage:      "Logging level, one of debug, info, warn, error",
		Value:      "info",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			var l slog.Level
			return l.UnmarshalText([]byte(s))
		},
	}

	flagLogFormat = cli.StringFlag{
		Name:       "log-format",
		Usage:      "Logging format, either text or json",
		Value:      "text",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			switch strings.ToLower(s) {
			case "text", "json":
				return nil
			default:
				return errors.New("unknown logging format")
			}
		},
	}
)

func loggerFromFlags(cmd *cli.Command) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(cmd.String("log"))); err != nil {
		panic(err)
	}
	var h slog.Handler
	switch strings.ToLower(cmd.String("log-format")) {
	case "text":
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	case "json":
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	}
	return slog.New(h)
}

// metrics configuration
func newMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		WebhookCount: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "statusbot",
					Subsystem: "chat",
					Name:      "webhooks",
					Help:      "Number of webhooks received from the chat server.",
				},
				[]string{"trigger"},
			),
		),
		TokenMismatches: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "statusbot",
					Subsystem: "chat",
					Name:      "token_mismatches",
					Help:      "Number of webhooks received with the wrong token.",
				},
			),
		),
		CommandCount: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "statusbot",
					Subsystem: "commands",
					Name:      "executed",
					Help:      "Number of commands executed.",
				},
				[]string{"kind"},
			),
		),
		RemoteFailures: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "statusbot",
					Subsystem: "commands",
					Name:      "remote_failures",
					Help:      "Number of failed calls to the office or chat while executing commands.",
				},
				[]string{"op"},
			),
		),
		RefreshLatency: metrics.NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 5, 10},
					Namespace: "statusbot",
					Subsystem: "directory",
					Name:      "refresh_latency",
					Help:      "How long it takes to fetch the office desks in seconds",
				},
				[]string{"outcome"},
			),
		),
		DirectorySize: metrics.NewPromGauge(
			prometheus.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "statusbot",
					Subsystem: "directory",
					Name:      "desks",
					Help:      "Number of owned desks in the directory.",
				},
			),
		),
	}
}
