// Package images rewrites wiki-style image embeds in blog posts into
// publish-ready markdown links and copies the referenced assets into the
// static-serving directory.
package images

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/raido/internal/storage"
)

// embedRe matches [[name.ext]] embeds for common raster formats. The
// character class admits no path separators, so a matched name can never
// point outside the attachments directory.
var embedRe = regexp.MustCompile(`(?i)\[\[([\w\s.-]+\.(?:png|jpe?g|gif|bmp))\]\]`)

// Rewriter converts image embeds and publishes their assets.
type Rewriter struct {
	store          storage.Provider
	attachmentsDir string
	staticDir      string
	linkPrefix     string
	logger         *slog.Logger
}

// Result summarizes one rewrite pass.
type Result struct {
	RewrittenPosts []string
	CopiedAssets   int
}

// New returns a Rewriter. attachmentsDir is where source images live,
// staticDir is the publish target (created on demand), and linkPrefix is the
// URL prefix used in rewritten links (e.g. "/images").
func New(store storage.Provider, attachmentsDir, staticDir, linkPrefix string, logger *slog.Logger) *Rewriter {
	return &Rewriter{
		store:          store,
		attachmentsDir: attachmentsDir,
		staticDir:      staticDir,
		linkPrefix:     strings.TrimRight(linkPrefix, "/"),
		logger:         logger,
	}
}

// Run processes every post under the content root. Per-file failures are
// logged and skipped; the pass continues.
func (r *Rewriter) Run() (*Result, error) {
	if err := os.MkdirAll(r.staticDir, 0o755); err != nil {
		return nil, fmt.Errorf("images: create static dir: %w", err)
	}

	metas, err := r.store.List("")
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, meta := range metas {
		if meta.Err != nil {
			r.logger.Warn("images: unreadable post skipped", slog.String("path", meta.Path), slog.String("error", meta.Err.Error()))
			continue
		}
		data, err := r.store.Read(meta.Path)
		if err != nil {
			r.logger.Warn("images: read failed", slog.String("path", meta.Path), slog.String("error", err.Error()))
			continue
		}

		content, copied := r.rewritePost(meta.Path, string(data))
		res.CopiedAssets += copied
		if content == string(data) {
			continue
		}

		if err := r.store.Write(meta.Path, []byte(content)); err != nil {
			r.logger.Warn("images: write failed", slog.String("path", meta.Path), slog.String("error", err.Error()))
			continue
		}
		res.RewrittenPosts = append(res.RewrittenPosts, meta.Path)
		r.logger.Info("images: post rewritten", slog.String("path", meta.Path))
	}
	return res, nil
}

// rewritePost replaces embeds in content and copies each referenced asset,
// returning the updated content and the number of assets copied.
func (r *Rewriter) rewritePost(path, content string) (string, int) {
	matches := embedRe.FindAllStringSubmatch(content, -1)
	copied := 0
	seen := make(map[string]struct{}, len(matches))

	for _, m := range matches {
		name := m[1]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		link := r.linkPrefix + "/" + strings.ReplaceAll(name, " ", "%20")
		content = strings.ReplaceAll(content,
			"[["+name+"]]",
			"![Image Description]("+link+")")

		src := filepath.Join(r.attachmentsDir, name)
		if _, err := os.Stat(src); err != nil {
			r.logger.Warn("images: asset not found",
				slog.String("post", path),
				slog.String("asset", src))
			continue
		}
		if err := storage.CopyFile(src, filepath.Join(r.staticDir, name)); err != nil {
			r.logger.Warn("images: copy failed",
				slog.String("asset", src),
				slog.String("error", err.Error()))
			continue
		}
		copied++
	}
	return content, copied
}
