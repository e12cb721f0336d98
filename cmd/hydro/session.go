package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/hydrostack/hydro-go"
	"github.com/hydrostack/hydro-go/internal/config"
	"github.com/hydrostack/hydro-go/internal/errors"
	"github.com/hydrostack/hydro-go/pkg/component"
	"github.com/hydrostack/hydro-go/pkg/dom"
	"github.com/hydrostack/hydro-go/pkg/snapshot"
)

// session is one page opened by a command.
type session struct {
	cmd      *cobra.Command
	opts     *options
	file     *config.Config
	registry *prometheus.Registry
	client   *hydro.Client
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.New("H031").Wrap(err)
	}
	return config.Load(wd)
}

// open loads the config, creates a client and loads url.
func open(cmd *cobra.Command, opts *options, url string) (*session, error) {
	file, err := loadConfig(opts.config)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	registry := prometheus.NewRegistry()

	cfg := hydro.FromFile(file)
	cfg.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	cfg.Metrics.Registry = registry

	s := &session{
		cmd:      cmd,
		opts:     opts,
		file:     file,
		registry: registry,
		client:   hydro.New(cfg),
	}
	if err := s.client.Load(cmd.Context(), url); err != nil {
		s.client.Close()
		return nil, err
	}
	if _, err := s.client.WireEvents(); err != nil {
		warn(cmd.OutOrStdout(), "%s", err)
	}
	return s, nil
}

// query returns the element matching selector or an error naming it.
func (s *session) query(selector string) (*html.Node, error) {
	n, err := s.client.Query(selector)
	if err != nil {
		return nil, errors.New("H040").WithDetail("invalid selector " + selector).Wrap(err)
	}
	if n == nil {
		return nil, errors.New("H040").
			WithDetail("no element matches " + selector).
			WithSuggestion("Run 'hydro get URL --html' to inspect the page")
	}
	return n, nil
}

// settle waits until no request is queued or running, so requests
// started by triggers have been applied.
func (s *session) settle(ctx context.Context) error {
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for s.client.Pending() > 0 {
		select {
		case <-tick.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// finish prints the page summary, stores the snapshot and closes the
// client.
func (s *session) finish(ctx context.Context) error {
	defer s.client.Close()
	if err := s.settle(ctx); err != nil {
		return err
	}

	out := s.cmd.OutOrStdout()
	info(out, "Title:     %s", s.client.Title())
	if loc := s.client.Location(); loc != nil {
		info(out, "Location:  %s", loc)
	}
	for _, c := range s.components() {
		info(out, "Component: %s (%s)", c.ID, c.Name)
	}

	doc := s.document()
	if s.opts.html {
		out.Write([]byte(doc + "\n"))
	}
	if s.opts.snapshot != "" {
		store, err := s.store()
		if err != nil {
			return err
		}
		loc, err := store.Save(ctx, s.opts.snapshot, []byte(doc))
		if err != nil {
			return err
		}
		success(out, "Snapshot saved to %s", loc)
	}
	if s.opts.metrics {
		printMetrics(out, s.registry)
	}
	return nil
}

func (s *session) components() []component.Component {
	var out []component.Component
	s.client.Document().Read(func(root *html.Node) {
		nodes, _ := dom.QueryAll(root, "["+component.MarkerAttr+"]")
		for _, n := range nodes {
			if c, ok := component.Locate(n); ok {
				out = append(out, c)
			}
		}
	})
	return out
}

func (s *session) document() string {
	var doc string
	s.client.Document().Read(func(*html.Node) {
		doc = s.client.Document().HTML()
	})
	return doc
}

// store picks S3 when a bucket is configured, disk otherwise.
func (s *session) store() (snapshot.Store, error) {
	snap := s.file.Snapshot
	if snap.S3.Bucket != "" {
		client := snapshot.NewS3Client(snapshot.S3Options{Region: snap.S3.Region, Endpoint: snap.S3.Endpoint})
		return snapshot.NewS3Store(client, snap.S3.Bucket, snap.S3.Prefix), nil
	}
	dir := snap.Dir
	if dir == "" {
		dir = ".hydro/snapshots"
	}
	return snapshot.NewDiskStore(dir)
}

func (s *session) checkable(el *html.Node) bool {
	var ok bool
	s.client.Document().Read(func(*html.Node) { ok = dom.IsCheckable(el) })
	return ok
}
