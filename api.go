package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jryio/statusbot/command"
	"github.com/jryio/statusbot/zulip"
)

func (robo *Robot) api(ctx context.Context, listen string, mux *http.ServeMux, metrics []prometheus.Collector) error {
	robo.routes(mux, metrics)
	l, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("couldn't start API server: %w", err)
	}
	srv := http.Server{
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}
	go func() {
		slog.InfoContext(ctx, "HTTP API server", slog.Any("addr", l.Addr()))
		err := srv.Serve(l)
		if err == http.ErrServerClosed {
			return
		}
		slog.ErrorContext(ctx, "HTTP API server closed", slog.Any("err", err))
	}()
	<-ctx.Done()
	// The context is now done, so it is obviously the wrong choice for
	// managing the shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// routes registers the API handlers on mux.
func (robo *Robot) routes(mux *http.ServeMux, metrics []prometheus.Collector) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(
		collectors.WithGoCollectorMemStatsMetricsDisabled(),
		collectors.WithGoCollectorRuntimeMetrics(
			collectors.GoRuntimeMetricsRule{
				Matcher: regexp.MustCompile(`^(/gc/gogc:percent|/gc/gomemlimit:bytes|/gc/heap/allocs:bytes|/gc/heap/goal:bytes|/memory/classes/total:bytes|/sched/gomaxprocs:threads|/sched/goroutines:goroutines|/sched/latencies:seconds)$`),
			},
		),
	))
	reg.MustRegister(metrics...)
	opts := promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, opts))
	mux.HandleFunc("GET /{$}", robo.apiHeartbeat)
	mux.HandleFunc("POST /status", robo.apiStatus)
	mux.HandleFunc("/", apiNotFound)
}

func jsonerror(w http.ResponseWriter, status int, msg string) {
	v := struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}{
		Error:  msg,
		Status: status,
	}
	b, err := json.Marshal(&v)
	if err != nil {
		panic(err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func (robo *Robot) apiHeartbeat(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	n := robo.cmd.Directory.Len()
	fmt.Fprintf(w, "Hello World!\nDesks in directory: %d\n", n)
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("NOT FOUND"))
}

func (robo *Robot) apiStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slog.With(slog.String("api", "status"), slog.Any("trace", uuid.New()))
	log.InfoContext(ctx, "handle", slog.String("route", r.Pattern), slog.String("remote", r.RemoteAddr))
	defer log.InfoContext(ctx, "done")
	var hook zulip.OutgoingWebhook
	if err := json.UnmarshalDecode(jsontext.NewDecoder(r.Body), &hook); err != nil {
		log.WarnContext(ctx, "read webhook", slog.Any("err", err))
		jsonerror(w, http.StatusBadRequest, "webhook read failed")
		return
	}
	if !robo.token.Equal(hook.Token) {
		// Mismatched webhooks are still answered.
		log.WarnContext(ctx, "webhook token mismatch", slog.String("sender", hook.Message.SenderEmail))
		robo.metrics.TokenMismatches.Observe(1)
	}
	robo.metrics.WebhookCount.Observe(1, triggerLabel(hook.Trigger))
	reply := robo.respond(ctx, log, &hook)
	b, err := json.Marshal(reply)
	if err != nil {
		panic(err)
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil {
		log.ErrorContext(ctx, "write response failed", slog.Any("err", err))
	}
}

// triggerLabel is the metric label for a webhook trigger. Triggers the chat
// server doesn't send are all counted as "other".
func triggerLabel(t zulip.Trigger) string {
	switch t {
	case zulip.DirectMessage, zulip.PrivateMessage, zulip.Mention:
		return string(t)
	default:
		return "other"
	}
}

// respond runs the command in a webhook. Only direct messages get a reply.
func (robo *Robot) respond(ctx context.Context, log *slog.Logger, hook *zulip.OutgoingWebhook) zulip.Reply {
	if !hook.Trigger.IsDirect() {
		log.DebugContext(ctx, "not a direct message", slog.String("trigger", string(hook.Trigger)))
		return zulip.NoReply()
	}
	call := command.Invocation{
		Sender:  hook.Message.SenderFullName,
		Command: command.Parse(hook.Data, robo.cmd.Emoji),
	}
	log.InfoContext(ctx, "command",
		slog.String("kind", call.Command.Kind.String()),
		slog.String("sender", call.Sender),
	)
	return command.Do(ctx, robo.cmd, &call)
}
