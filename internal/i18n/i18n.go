// Package i18n serves translated strings from YAML catalogs.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"travelagency/internal/utils"
)

//go:embed locales/*.yaml
var embedded embed.FS

// Bundle holds one flattened catalog per locale. Reads are concurrent; a reload
// swaps a single catalog under the write lock.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
	matcher  language.Matcher
	tags     []string

	defaultLocale string
	dir           string
}

// New loads the embedded catalogs, then overlays *.yaml files from dir when set.
func New(defaultLocale, dir string) (*Bundle, error) {
	b := &Bundle{
		catalogs:      map[string]map[string]string{},
		defaultLocale: strings.ToLower(defaultLocale),
		dir:           dir,
	}

	entries, err := fs.ReadDir(embedded, "locales")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		raw, err := embedded.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, err
		}
		if err := b.load(localeOf(e.Name()), raw); err != nil {
			return nil, err
		}
	}

	if dir != "" {
		files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if err := b.loadFile(f); err != nil {
				return nil, err
			}
		}
	}

	if _, ok := b.catalogs[b.defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q has no catalog", b.defaultLocale)
	}
	b.rebuildMatcher()
	return b, nil
}

func localeOf(name string) string {
	return strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
}

func (b *Bundle) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return b.load(localeOf(path), raw)
}

// load merges raw over whatever the locale already has.
func (b *Bundle) load(locale string, raw []byte) error {
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("parse %s catalog: %w", locale, err)
	}
	flat := map[string]string{}
	flatten("", tree, flat)

	b.mu.Lock()
	defer b.mu.Unlock()
	merged := map[string]string{}
	for k, v := range b.catalogs[locale] {
		merged[k] = v
	}
	for k, v := range flat {
		merged[k] = v
	}
	b.catalogs[locale] = merged
	return nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

func (b *Bundle) rebuildMatcher() {
	b.mu.Lock()
	defer b.mu.Unlock()

	locales := make([]string, 0, len(b.catalogs))
	for l := range b.catalogs {
		if l != b.defaultLocale {
			locales = append(locales, l)
		}
	}
	sort.Strings(locales)
	locales = append([]string{b.defaultLocale}, locales...)

	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		tags = append(tags, language.Make(l))
	}
	b.tags = locales
	b.matcher = language.NewMatcher(tags)
}

func (b *Bundle) Default() string { return b.defaultLocale }

// Locales lists the loaded locales, default first.
func (b *Bundle) Locales() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.tags...)
}

func (b *Bundle) Supported(locale string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.catalogs[strings.ToLower(locale)]
	return ok
}

// Match picks the best loaded locale for an Accept-Language header.
func (b *Bundle) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.defaultLocale
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.defaultLocale
	}
	return b.tags[idx]
}

// T looks key up in locale, then the default locale, then returns the key itself.
// Args are applied with fmt.Sprintf.
func (b *Bundle) T(locale, key string, args ...any) string {
	msg, ok := b.lookup(strings.ToLower(locale), key)
	if !ok {
		msg, ok = b.lookup(b.defaultLocale, key)
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Has reports whether key exists in locale or the default locale.
func (b *Bundle) Has(locale, key string) bool {
	if _, ok := b.lookup(strings.ToLower(locale), key); ok {
		return true
	}
	_, ok := b.lookup(b.defaultLocale, key)
	return ok
}

func (b *Bundle) lookup(locale, key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	msg, ok := b.catalogs[locale][key]
	return msg, ok
}

// Watch reloads catalogs from the override directory when files change, until ctx ends.
func (b *Bundle) Watch(ctx context.Context) error {
	if b.dir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(b.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", b.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Ext(event.Name) != ".yaml" {
					continue
				}
				if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
					if err := b.loadFile(event.Name); err != nil {
						utils.LogError("", "i18n", "reload", err)
						continue
					}
					b.rebuildMatcher()
					utils.LogEvent("", "i18n", "reload", "catalog reloaded: "+filepath.Base(event.Name))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				utils.LogError("", "i18n", "watch", err)
			}
		}
	}()
	return nil
}
