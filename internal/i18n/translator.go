// Package i18n resolves localized strings for the dashboard.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

// DefaultNamespace is used when a lookup names no namespace.
const DefaultNamespace = "common"

//go:embed locales/*.json
var catalogFS embed.FS

// Table maps language → namespace → key → entry. Entries are expected to be
// strings; anything else is treated as malformed.
type Table map[string]map[string]map[string]any

// Translator resolves keys against a loaded Table.
type Translator struct {
	table    Table
	fallback string
	logger   *slog.Logger
}

// New loads the embedded catalogs.
func New(logger *slog.Logger, fallbackLang string) (*Translator, error) {
	table, err := loadCatalogs(catalogFS, "locales")
	if err != nil {
		return nil, err
	}
	return NewFromTable(table, logger, fallbackLang), nil
}

// NewFromTable wraps an in-memory table.
func NewFromTable(table Table, logger *slog.Logger, fallbackLang string) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	if fallbackLang == "" {
		fallbackLang = "en"
	}
	return &Translator{table: table, fallback: fallbackLang, logger: logger}
}

// Resolve returns table[lang][namespace][key], or key itself when any level is
// missing or the entry is malformed.
func (t *Translator) Resolve(lang, key string, namespace ...string) string {
	if value, ok := t.lookup(lang, key, namespaceOf(namespace)); ok {
		return value
	}
	return key
}

// ResolveOr behaves like Resolve but answers fallback on a miss.
func (t *Translator) ResolveOr(lang, key, namespace, fallback string) string {
	if value, ok := t.lookup(lang, key, namespaceOf([]string{namespace})); ok {
		return value
	}
	return fallback
}

// Languages lists the languages present in the table.
func (t *Translator) Languages() []string {
	if t == nil {
		return nil
	}
	langs := make([]string, 0, len(t.table))
	for lang := range t.table {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// DefaultLanguage is the language used before any preference exists.
func (t *Translator) DefaultLanguage() string {
	if t == nil || t.fallback == "" {
		return "en"
	}
	return t.fallback
}

func (t *Translator) lookup(lang, key, namespace string) (value string, ok bool) {
	if t == nil || key == "" {
		return "", false
	}
	defer func() {
		if rec := recover(); rec != nil {
			t.logger.Error("translation lookup panicked", slog.String("lang", lang), slog.String("namespace", namespace), slog.String("key", key), slog.Any("panic", rec))
			value, ok = "", false
		}
	}()
	entry, found := t.table[lang][namespace][key]
	if !found {
		return "", false
	}
	str, isString := entry.(string)
	if !isString {
		t.logger.Warn("malformed translation entry", slog.String("lang", lang), slog.String("namespace", namespace), slog.String("key", key), slog.String("type", fmt.Sprintf("%T", entry)))
		return "", false
	}
	return str, true
}

func namespaceOf(ns []string) string {
	if len(ns) == 0 || strings.TrimSpace(ns[0]) == "" {
		return DefaultNamespace
	}
	return ns[0]
}

// loadCatalogs reads <dir>/<lang>.json files shaped {namespace: {key: value}}.
func loadCatalogs(fsys fs.FS, dir string) (Table, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read catalogs: %w", err)
	}
	table := make(Table, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", entry.Name(), err)
		}
		var namespaces map[string]map[string]any
		if err := json.Unmarshal(raw, &namespaces); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", entry.Name(), err)
		}
		table[strings.TrimSuffix(entry.Name(), ".json")] = namespaces
	}
	return table, nil
}
