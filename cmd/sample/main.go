// Command sample serves a small catalogue through a restrouter dispatcher.
//
// Run:
//
//	go run ./cmd/sample -config restrouter.yaml
//
// Then explore:
//
//	GET /items/{id}     negotiated, produces JSON or YAML
//	GET /items          negotiated, any supported type
//	GET /report         negotiated, produces XML or plain text
//	GET /export         custom route streaming CSV
//	GET /broken         handler fault
//	GET /metrics        Prometheus metrics (custom route)
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bjaus/restrouter"
)

type item struct {
	ID    int     `json:"id" xml:"id" yaml:"id" cbor:"id"`
	Name  string  `json:"name" xml:"name" yaml:"name" cbor:"name"`
	Price float64 `json:"price" xml:"price" yaml:"price" cbor:"price"`
}

type catalogue struct {
	mu    sync.RWMutex
	items map[int]item
}

func newCatalogue() *catalogue {
	return &catalogue{items: map[int]item{
		1: {ID: 1, Name: "kettle", Price: 24.5},
		2: {ID: 2, Name: "teapot", Price: 18},
		3: {ID: 3, Name: "mug", Price: 6.25},
	}}
}

func (c *catalogue) get(id int) (item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[id]
	return it, ok
}

func (c *catalogue) list() []item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]item, 0, len(c.items))
	for id := 1; len(out) < len(c.items); id++ {
		if it, ok := c.items[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := restrouter.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := restrouter.NewMetrics(promReg)

	resolver := restrouter.NewMuxResolver()
	registerRoutes(resolver, newCatalogue())
	resolver.Handle(http.MethodGet, cfg.Server.MetricsPath, restrouter.NewRoute(
		restrouter.RawHandlerFunc(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}).ServeHTTP),
		restrouter.AsCustom(),
	))

	d := restrouter.NewDispatcher(resolver, reg,
		restrouter.WithLogger(logger),
		restrouter.WithMetrics(metrics),
	)

	mw := []restrouter.Middleware{
		restrouter.Recovery(),
		restrouter.RequestID(),
		restrouter.Logger(logger),
	}
	if cfg.RateLimit.Rate > 0 {
		mw = append(mw, restrouter.RateLimit(restrouter.RateLimitConfig{
			Rate:  cfg.RateLimit.Rate,
			Burst: cfg.RateLimit.Burst,
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("listening",
		slog.String("addr", cfg.Server.Addr),
		slog.Any("media_types", reg.SupportedMediaTypes()),
		slog.String("default", reg.DefaultContentType()),
	)
	return restrouter.ListenAndServe(ctx, cfg.Server.Addr, restrouter.Chain(d, mw...))
}

func registerRoutes(res *restrouter.MuxResolver, cat *catalogue) {
	res.Handle(http.MethodGet, "/items/{id:[0-9]+}", restrouter.NewRoute(
		restrouter.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) (any, error) {
			id, err := strconv.Atoi(restrouter.Vars(r)["id"])
			if err != nil {
				return nil, restrouter.Error(http.StatusBadRequest, "invalid item id")
			}
			it, ok := cat.get(id)
			if !ok {
				return nil, &restrouter.ProblemDetail{
					Type:   "about:blank",
					Title:  "Not Found",
					Status: http.StatusNotFound,
					Detail: fmt.Sprintf("item %d does not exist", id),
				}
			}
			return it, nil
		}),
		restrouter.WithProduces("application/json", "application/yaml"),
	))

	res.Handle(http.MethodGet, "/items", restrouter.NewRoute(
		restrouter.HandlerFunc(func(http.ResponseWriter, *http.Request) (any, error) {
			return cat.list(), nil
		}),
	))

	res.Handle(http.MethodGet, "/report", restrouter.NewRoute(
		restrouter.HandlerFunc(func(http.ResponseWriter, *http.Request) (any, error) {
			return fmt.Sprintf("%d items in stock", len(cat.list())), nil
		}),
		restrouter.WithProduces("application/xml", "text/plain"),
	))

	res.Handle(http.MethodGet, "/export", restrouter.NewRoute(
		restrouter.RawHandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			cw := csv.NewWriter(w)
			_ = cw.Write([]string{"id", "name", "price"}) //nolint:errcheck
			for _, it := range cat.list() {
				_ = cw.Write([]string{ //nolint:errcheck
					strconv.Itoa(it.ID), it.Name, strconv.FormatFloat(it.Price, 'f', 2, 64),
				})
			}
			cw.Flush()
		}),
		restrouter.AsCustom(),
	))

	res.Handle(http.MethodGet, "/broken", restrouter.NewRoute(
		restrouter.HandlerFunc(func(http.ResponseWriter, *http.Request) (any, error) {
			return nil, restrouter.Error(http.StatusServiceUnavailable, "inventory backend unavailable")
		}),
	))
}
