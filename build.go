package spacetraveling

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/spacetraveling/blog"
)

// BuildStats summarizes a static export.
type BuildStats struct {
	Posts     int
	Fragments int
	Took      time.Duration
}

// Generator writes the whole site as static files. Views should link
// load-more buttons to pre-rendered fragments.
type Generator struct {
	Config SiteConfig
	Loader *blog.Loader
	Views  ViewFuncs
	Logger zerolog.Logger
}

// NewGenerator returns a Generator with defaults applied to cfg.
func NewGenerator(cfg SiteConfig, loader *blog.Loader, vf ViewFuncs, logger zerolog.Logger) *Generator {
	cfg.setDefaults()
	return &Generator{Config: cfg, Loader: loader, Views: vf, Logger: logger}
}

// Build renders into Config.OutputDir: the listing, one fragment per
// further listing page, every post, the 404 page, feeds and assets. Any
// backend error aborts the build. There is no fallback for posts missing
// from the export.
func (g *Generator) Build(ctx context.Context) (BuildStats, error) {
	start := time.Now()
	out := g.Config.OutputDir
	if err := os.MkdirAll(out, 0o755); err != nil {
		return BuildStats{}, fmt.Errorf("spacetraveling: build: %w", err)
	}

	fragments, err := g.buildListing(ctx, out)
	if err != nil {
		return BuildStats{}, fmt.Errorf("spacetraveling: build: %w", err)
	}

	uids, err := g.Loader.Paths(ctx)
	if err != nil {
		return BuildStats{}, fmt.Errorf("spacetraveling: build: %w", err)
	}
	for _, uid := range uids {
		if !safeSegment(uid) {
			return BuildStats{}, fmt.Errorf("spacetraveling: build: unsafe uid %q", uid)
		}
	}
	posts, err := g.buildPosts(ctx, out, uids)
	if err != nil {
		return BuildStats{}, fmt.Errorf("spacetraveling: build: %w", err)
	}

	summaries := make([]blog.PostSummary, len(posts))
	for i, p := range posts {
		summaries[i] = p.Summary()
	}
	if err := g.buildExtras(ctx, out, summaries); err != nil {
		return BuildStats{}, fmt.Errorf("spacetraveling: build: %w", err)
	}

	stats := BuildStats{Posts: len(posts), Fragments: fragments, Took: time.Since(start)}
	g.Logger.Info().
		Str("dir", out).
		Int("posts", stats.Posts).
		Int("fragments", stats.Fragments).
		Dur("took", stats.Took).
		Msg("site exported")
	return stats, nil
}

// buildListing writes index.html and follows the cursors, writing each
// further page as a fragment under page/<n>/. Pages are numbered by
// position so the links rendered into each fragment always resolve.
func (g *Generator) buildListing(ctx context.Context, out string) (int, error) {
	first, err := g.Loader.Listing(ctx)
	if err != nil {
		return 0, err
	}
	first.Page = 1
	feed := blog.NewFeed(first)
	if err := RenderFile(ctx, filepath.Join(out, "index.html"), g.Views.Home(feed, false)); err != nil {
		return 0, err
	}

	fragments := 0
	seen := map[string]bool{}
	for feed.HasMore() {
		if seen[feed.NextPage] {
			return fragments, fmt.Errorf("cursor loop at %s", feed.NextPage)
		}
		seen[feed.NextPage] = true
		page, err := g.Loader.Page(ctx, feed.NextPage)
		if err != nil {
			return fragments, err
		}
		page.Page = feed.Page + 1
		batch := blog.NewFeed(page)
		path := filepath.Join(out, "page", strconv.Itoa(page.Page), "index.html")
		if err := RenderFile(ctx, path, g.Views.PostList(batch)); err != nil {
			return fragments, err
		}
		fragments++
		feed = batch
	}
	return fragments, nil
}

func (g *Generator) buildPosts(ctx context.Context, out string, uids []string) ([]blog.PostDetail, error) {
	posts, err := loadDetails(ctx, g.Loader, uids, g.Config.BuildConcurrency)
	if err != nil {
		return nil, err
	}
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(g.Config.BuildConcurrency)
	for _, p := range posts {
		eg.Go(func() error {
			path := filepath.Join(out, "post", p.UID, "index.html")
			return RenderFile(ectx, path, g.Views.Post(p, false))
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (g *Generator) buildExtras(ctx context.Context, out string, posts []blog.PostSummary) error {
	if err := RenderFile(ctx, filepath.Join(out, "404.html"), g.Views.NotFound()); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(out, "sitemap.xml"), func(w *bufio.Writer) error {
		return writeSitemap(w, g.Config.URL, posts)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(out, "feed.xml"), func(w *bufio.Writer) error {
		return writeRSS(w, g.Config, posts)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(out, "robots.txt"), func(w *bufio.Writer) error {
		_, err := w.WriteString(robotsTxt(g.Config.URL))
		return err
	}); err != nil {
		return err
	}
	return copyAssets(filepath.Join(out, "public"))
}

func copyAssets(dst string) error {
	assets, err := fs.Sub(EmbeddedAssets, "embedded")
	if err != nil {
		return err
	}
	return fs.WalkDir(assets, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(assets, path)
		if err != nil {
			return err
		}
		return writeFile(filepath.Join(dst, filepath.FromSlash(path)), func(w *bufio.Writer) error {
			_, err := w.Write(data)
			return err
		})
	})
}

// safeSegment reports whether uid can be used as one path element.
func safeSegment(uid string) bool {
	return uid != "" && uid != "." && uid != ".." && !strings.ContainsAny(uid, `/\`)
}
