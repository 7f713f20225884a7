package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/coursesmith-backend/internal/logger"
	"github.com/yungbote/coursesmith-backend/internal/utils"
)

const (
	// Buffers smaller than this are never a real image worth embedding.
	minAssetBytes = 64
	maxAssetBytes = 20 << 20
	// Concurrent fetches per document.
	fetchParallelism = 8

	staticDirName = "static"
)

var (
	imgSrcPattern           = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)
	cssURLPattern           = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)
	inlineBackgroundPattern = regexp.MustCompile(`background-image\s*:\s*url\(\s*['"]?([^'")]+)['"]?\s*\)`)
)

// Extensions accepted straight from the reference URL; anything else is
// inferred from the validated bytes.
var knownImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true, ".webp": true,
}

var allowedImageMIMEs = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
}

// Hosts that are referenced from rendered documents but are never image
// assets; skipped without a network attempt.
var skippedAssetHosts = []string{
	"fonts.googleapis.com",
	"fonts.gstatic.com",
}

// AssetLocalizer embeds every image a rendered document references into the
// package archive and rewrites the references to the embedded copies, so
// the package has no external dependencies. One localizer is scoped to a
// single export and released with it; the static-asset root is detected
// once at construction.
type AssetLocalizer struct {
	log        *logger.Logger
	client     *http.Client
	staticRoot string
	repoRoot   string
}

func NewAssetLocalizer(baseLog *logger.Logger) *AssetLocalizer {
	log := baseLog.With("component", "AssetLocalizer")
	timeout := time.Duration(utils.GetEnvAsInt("ASSET_FETCH_TIMEOUT_SECONDS", 10, baseLog)) * time.Second

	staticRoot, repoRoot := locateStaticRoot()
	if staticRoot == "" {
		log.Debug("No static asset directory found, static references will be skipped")
	}
	return &AssetLocalizer{
		log:        log,
		client:     &http.Client{Timeout: timeout},
		staticRoot: staticRoot,
		repoRoot:   repoRoot,
	}
}

// locateStaticRoot walks upward from the working directory until a
// directory named "static" is found, falling back to a fixed relative
// offset from the module location.
func locateStaticRoot() (string, string) {
	dir, err := os.Getwd()
	if err != nil {
		return "", ""
	}
	for {
		candidate := filepath.Join(dir, staticDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	fallback := filepath.Join("..", "..", staticDirName)
	if info, err := os.Stat(fallback); err == nil && info.IsDir() {
		return fallback, filepath.Dir(fallback)
	}
	return "", ""
}

type assetResult struct {
	ref  string
	data []byte
}

// Localize embeds every resolvable image referenced by html under
// assetFolder/assets inside zw and returns the rewritten document plus the
// archive paths of the written assets. Unresolvable references are left
// untouched. Two identical references share one embedded copy.
func (l *AssetLocalizer) Localize(ctx context.Context, html string, zw *zip.Writer, assetFolder string) (string, []string) {
	refs := collectAssetRefs(html)
	if len(refs) == 0 {
		return html, nil
	}

	results := make([]assetResult, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)
	for i, ref := range refs {
		g.Go(func() error {
			data, err := l.resolveRef(gctx, ref)
			if err != nil {
				l.log.Debug("Asset reference not resolved", "ref", ref, "error", err)
				return nil
			}
			results[i] = assetResult{ref: ref, data: data}
			return nil
		})
	}
	// Closures never return errors; each failed reference degrades alone.
	_ = g.Wait()

	var written []string
	replacements := map[string]string{}
	seq := 0
	for _, res := range results {
		if res.data == nil {
			continue
		}
		ext, ok := validateImage(res.ref, res.data)
		if !ok {
			l.log.Debug("Fetched buffer failed image validation, keeping original reference", "ref", res.ref, "size", len(res.data))
			continue
		}
		seq++
		name := fmt.Sprintf("img_%03d%s", seq, ext)
		archivePath := path.Join(assetFolder, "assets", name)
		w, err := zw.Create(archivePath)
		if err != nil {
			l.log.Warn("Failed to create archive entry for asset", "path", archivePath, "error", err)
			continue
		}
		if _, err := w.Write(res.data); err != nil {
			l.log.Warn("Failed to write asset into archive", "path", archivePath, "error", err)
			continue
		}
		written = append(written, archivePath)
		replacements[res.ref] = "assets/" + name
	}

	return rewriteRefs(html, refs, replacements), written
}

// rewriteRefs substitutes the localized references in a single pass. The
// alternation tries longer references first, so a reference that is a prefix
// of another never rewrites inside it; references without a replacement stay
// verbatim.
func rewriteRefs(html string, refs []string, replacements map[string]string) string {
	if len(replacements) == 0 {
		return html
	}
	ordered := append([]string(nil), refs...)
	sort.Slice(ordered, func(i, j int) bool {
		if len(ordered[i]) != len(ordered[j]) {
			return len(ordered[i]) > len(ordered[j])
		}
		return ordered[i] < ordered[j]
	})
	quoted := make([]string, len(ordered))
	for i, ref := range ordered {
		quoted[i] = regexp.QuoteMeta(ref)
	}
	pattern := regexp.MustCompile(strings.Join(quoted, "|"))
	return pattern.ReplaceAllStringFunc(html, func(ref string) string {
		if local, ok := replacements[ref]; ok {
			return local
		}
		return ref
	})
}

// collectAssetRefs returns the de-duplicated, order-preserving set of image
// references in the document: img srcs, CSS url() values, and inline
// background-image declarations.
func collectAssetRefs(html string) []string {
	var refs []string
	seen := map[string]bool{}
	for _, pattern := range []*regexp.Regexp{imgSrcPattern, cssURLPattern, inlineBackgroundPattern} {
		for _, m := range pattern.FindAllStringSubmatch(html, -1) {
			ref := strings.TrimSpace(m[1])
			if ref == "" || seen[ref] {
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// resolveRef classifies a reference and produces its bytes: remote URLs are
// fetched, static-asset and root-relative paths are read from disk, and
// everything else (data URIs, font services, unrecognized forms) is
// skipped.
func (l *AssetLocalizer) resolveRef(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return nil, fmt.Errorf("data uri, nothing to localize")
	case strings.HasPrefix(ref, "//"):
		return l.fetch(ctx, "https:"+ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		for _, host := range skippedAssetHosts {
			if strings.Contains(ref, host) {
				return nil, fmt.Errorf("known non-image host")
			}
		}
		return l.fetch(ctx, ref)
	case strings.HasPrefix(ref, staticDirName+"/"):
		if l.staticRoot == "" {
			return nil, fmt.Errorf("no static root detected")
		}
		return readLocalAsset(filepath.Join(l.staticRoot, filepath.FromSlash(strings.TrimPrefix(ref, staticDirName+"/"))))
	case strings.HasPrefix(ref, "/"):
		if l.repoRoot == "" {
			return nil, fmt.Errorf("no repository root detected")
		}
		return readLocalAsset(filepath.Join(l.repoRoot, filepath.FromSlash(strings.TrimPrefix(ref, "/"))))
	default:
		return nil, fmt.Errorf("unrecognized reference form")
	}
}

func (l *AssetLocalizer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "CoursesmithExporter/1.0 (scorm packaging)")
	req.Header.Set("Accept", "image/*;q=1.0, */*;q=0.1")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, maxAssetBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxAssetBytes {
		return nil, fmt.Errorf("asset too large (%d > %d)", len(data), maxAssetBytes)
	}
	return data, nil
}

func readLocalAsset(fullPath string) ([]byte, error) {
	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() || info.Size() > maxAssetBytes {
		return nil, fmt.Errorf("not a readable asset file")
	}
	return os.ReadFile(fullPath)
}

// validateImage checks the minimum size and the magic-byte header, and
// picks the local filename extension: from the reference URL when it
// already carries a recognized image extension, from the detected type
// otherwise.
func validateImage(ref string, data []byte) (string, bool) {
	if len(data) < minAssetBytes {
		return "", false
	}
	detected := mimetype.Detect(data)
	ext, ok := allowedImageMIMEs[strings.ToLower(detected.String())]
	if !ok {
		return "", false
	}
	if refExt := strings.ToLower(path.Ext(trimRefQuery(ref))); knownImageExtensions[refExt] {
		return refExt, true
	}
	return ext, true
}

func trimRefQuery(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}
