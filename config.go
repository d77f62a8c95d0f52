package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gitlab.com/zephyrtronium/pick"
	"golang.org/x/time/rate"

	"github.com/jryio/statusbot/command"
	"github.com/jryio/statusbot/directory"
	"github.com/jryio/statusbot/emoji"
	"github.com/jryio/statusbot/metrics"
	"github.com/jryio/statusbot/office"
	"github.com/jryio/statusbot/secret"
	"github.com/jryio/statusbot/zulip"
)

// Load loads the bot configuration from TOML. Values from the environment
// override the file.
func Load(ctx context.Context, r io.Reader) (*Config, *toml.MetaData, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't decode config: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, nil, fmt.Errorf("couldn't read config from environment: %w", err)
	}
	expandcfg(&cfg, os.Getenv)
	cfg.Office.Home.Defined = md.IsDefined("office", "home") ||
		os.Getenv("RC_BOT_HOME_X") != "" && os.Getenv("RC_BOT_HOME_Y") != ""
	if cfg.HTTP.Domain != "" || cfg.HTTP.Port != "" {
		cfg.HTTP.Listen = net.JoinHostPort(cfg.HTTP.Domain, cfg.HTTP.Port)
	}
	if cfg.HTTP.Listen == "" {
		cfg.HTTP.Listen = ":8080"
	}
	if cfg.Directory.Refresh == 0 {
		cfg.Directory.Refresh = 60
	}
	if cfg.Office.Rate == (Rate{}) {
		cfg.Office.Rate = Rate{Every: 0.1, Num: 10}
	}
	return &cfg, &md, nil
}

// loadDotenv loads variables from the dotenv file for the run mode.
// Deployments on Fly get their environment from the platform instead.
func loadDotenv(ctx context.Context) {
	if os.Getenv("FLY_APP_NAME") != "" {
		return
	}
	file := ".env.devel"
	if os.Getenv("RUN_MODE") == "PROD" {
		file = ".env.prod"
	}
	if err := godotenv.Load(file); err != nil {
		slog.WarnContext(ctx, "couldn't load dotenv", slog.String("file", file), slog.Any("err", err))
		return
	}
	slog.InfoContext(ctx, "loaded dotenv", slog.String("file", file))
}

// Config is the configuration for the bot.
type Config struct {
	// HTTP is the configuration of the webhook server.
	HTTP HTTP `toml:"http"`
	// Office is the configuration for the virtual office API.
	Office OfficeCfg `toml:"office"`
	// Chat is the configuration for the chat server.
	Chat ChatCfg `toml:"chat"`
	// Directory is the configuration of the desk directory.
	Directory DirectoryCfg `toml:"directory"`
	// Emoji is the configuration of emoji aliases.
	Emoji EmojiCfg `toml:"emoji"`
	// Reply is the configuration of replies.
	Reply ReplyCfg `toml:"reply"`
}

type HTTP struct {
	// Listen is the address on which to serve.
	Listen string `toml:"listen"`
	// Domain and Port override Listen when either is set.
	Domain string `toml:"-" env:"SERVER_DOMAIN"`
	Port   string `toml:"-" env:"SERVER_PORT"`
}

// OfficeCfg is the configuration for the virtual office.
type OfficeCfg struct {
	// Site is the base URL of the office.
	Site string `toml:"site" env:"RC_SITE"`
	// BotID is the ID of the bot's avatar.
	BotID string `toml:"bot_id" env:"RC_BOT_ID"`
	// AppID and Secret are the application credentials.
	AppID  secret.Secret `toml:"app_id" env:"RC_APP_ID"`
	Secret secret.Secret `toml:"secret" env:"RC_APP_SECRET"`
	// Home is where the bot waits between commands.
	Home Home `toml:"home"`
	// Timeout is the time limit in seconds for each call.
	Timeout float64 `toml:"timeout"`
	// Rate paces calls to the office.
	Rate Rate `toml:"rate"`
}

type Home struct {
	X int `toml:"x" env:"RC_BOT_HOME_X"`
	Y int `toml:"y" env:"RC_BOT_HOME_Y"`
	// Defined is whether the config file or the environment gave a home.
	Defined bool `toml:"-"`
}

// ChatCfg is the configuration for the chat server.
type ChatCfg struct {
	// Site is the base URL of the chat server.
	Site string `toml:"site" env:"ZULIP_SITE"`
	// Email and APIKey are the bot's credentials.
	Email  string        `toml:"email" env:"ZULIP_BOT_EMAIL"`
	APIKey secret.Secret `toml:"api_key" env:"ZULIP_BOT_API_KEY"`
	// Token is the token the chat server sends with each webhook.
	Token secret.Secret `toml:"token" env:"ZULIP_BOT_API_TOKEN"`
	// Maintainers are the emails of the users who receive feedback.
	Maintainers []string `toml:"maintainers"`
}

type DirectoryCfg struct {
	// Refresh is the interval in seconds between directory refreshes.
	Refresh float64 `toml:"refresh"`
}

type EmojiCfg struct {
	// Table is the path to a JSON object mapping chat aliases to emoji.
	// If empty, the built in table is used.
	Table string `toml:"table"`
}

type ReplyCfg struct {
	// Signoff is the emotes and their weights to end successful replies.
	Signoff map[string]int `toml:"signoff"`
	// Diagnostics enables the test_ commands.
	Diagnostics bool `toml:"diagnostics"`
}

// Rate is a rate limit configuration.
type Rate struct {
	Every float64 `toml:"every"`
	Num   int     `toml:"num"`
}

// Validate reports every required setting that is missing or invalid.
func (cfg *Config) Validate() error {
	var errs []error
	req := func(name string, missing bool) {
		if missing {
			errs = append(errs, fmt.Errorf("missing %s", name))
		}
	}
	req("office site", cfg.Office.Site == "")
	req("office bot id", cfg.Office.BotID == "")
	req("office app id", cfg.Office.AppID.IsZero())
	req("office app secret", cfg.Office.Secret.IsZero())
	req("office home position", !cfg.Office.Home.Defined)
	req("chat site", cfg.Chat.Site == "")
	req("chat bot email", cfg.Chat.Email == "")
	req("chat api key", cfg.Chat.APIKey.IsZero())
	req("chat webhook token", cfg.Chat.Token.IsZero())
	h := office.Position{X: cfg.Office.Home.X, Y: cfg.Office.Home.Y}
	if h.Clamp() != h {
		errs = append(errs, fmt.Errorf("home position (%d, %d) is outside the office", h.X, h.Y))
	}
	if cfg.Office.Rate.Every < 0 || cfg.Office.Rate.Num <= 0 {
		errs = append(errs, errors.New("office rate must be positive"))
	}
	if cfg.Directory.Refresh < 0 {
		errs = append(errs, errors.New("directory refresh interval must be positive"))
	}
	return errors.Join(errs...)
}

func expandcfg(cfg *Config, expand func(s string) string) {
	fields := []*string{
		&cfg.HTTP.Listen,
		&cfg.Office.Site,
		&cfg.Office.BotID,
		&cfg.Chat.Site,
		&cfg.Chat.Email,
		&cfg.Emoji.Table,
	}
	for _, f := range fields {
		*f = os.Expand(*f, expand)
	}
	for i, s := range cfg.Chat.Maintainers {
		cfg.Chat.Maintainers[i] = os.Expand(s, expand)
	}
}

// loadEmoji loads the chat alias table, or the built in one if file is empty.
func loadEmoji(file string) (*emoji.Resolver, error) {
	if file == "" {
		return emoji.Default(), nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("couldn't open emoji table: %w", err)
	}
	defer f.Close()
	r, err := emoji.Load(f)
	if err != nil {
		return nil, fmt.Errorf("couldn't load emoji table %s: %w", file, err)
	}
	return r, nil
}

// officeClient creates the office API client.
func officeClient(cfg *OfficeCfg, client *http.Client) *office.Client {
	t := fseconds(cfg.Timeout)
	if t <= 0 {
		t = office.DefaultTimeout
	}
	return &office.Client{
		HTTP:    client,
		Site:    cfg.Site,
		BotID:   cfg.BotID,
		AppID:   cfg.AppID,
		Secret:  cfg.Secret,
		Limiter: rate.NewLimiter(rate.Every(fseconds(cfg.Rate.Every)), cfg.Rate.Num),
		Timeout: t,
	}
}

// chatClient creates the chat API client.
func chatClient(cfg *ChatCfg, client *http.Client) *zulip.Client {
	return &zulip.Client{
		HTTP:   client,
		Site:   cfg.Site,
		Email:  cfg.Email,
		APIKey: cfg.APIKey,
	}
}

// commandRobot creates the state that commands act on.
func commandRobot(cfg *Config, off *office.Client, chat *zulip.Client, emotes *emoji.Resolver, m *metrics.Metrics) *command.Robot {
	robo := &command.Robot{
		Log:         slog.Default(),
		Office:      off,
		Chat:        chat,
		Directory:   directory.New(),
		Emoji:       emotes,
		Home:        office.Position{X: cfg.Office.Home.X, Y: cfg.Office.Home.Y},
		Maintainers: cfg.Chat.Maintainers,
		Diagnostics: cfg.Reply.Diagnostics,
		Commands:    m.CommandCount,
		Failures:    m.RemoteFailures,
	}
	if len(cfg.Reply.Signoff) != 0 {
		robo.Signoff = pick.New(pick.FromMap(cfg.Reply.Signoff))
	}
	return robo
}

func fseconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
