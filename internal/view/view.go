package view

import (
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mactrack/mactrack/internal/auth"
	"github.com/mactrack/mactrack/internal/middleware"
	"github.com/mactrack/mactrack/internal/models"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}

	// isAdminResolver lets the router expose the gate's admin check to
	// templates without this package importing the gate.
	isAdminResolver func(*http.Request) bool
)

// SetIsAdminResolver sets the callback backing the IsAdmin template value.
func SetIsAdminResolver(f func(*http.Request) bool) {
	if f != nil {
		isAdminResolver = f
	}
}

func detectBase() {
	candidates := []string{"templates", "../templates", "../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the standard func map shared by all templates. Everything
// here is request-independent so parsed templates can be cached; per-request
// values (theme, login state, admin flag) travel in the data map instead.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"year":        func() int { return time.Now().Year() },
		"fmtDate":     func(t time.Time) string { return t.Format("Mon 2 Jan 2006") },
		"fmtTime":     func(t time.Time) string { return t.Format("15:04") },
		"fmtDateTime": func(t time.Time) string { return t.Format("Mon 2 Jan 2006 15:04") },
		"displayStatus": func(a models.Assignment) string {
			return models.DisplayStatus(a.Status, a.DueAt, time.Now())
		},
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		// dict creates a map from key-value pairs for sub-templates.
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// SetBaseDir overrides the template base directory (useful for tests).
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	baseDir = filepath.Clean(path)
	once = sync.Once{}
}

// ResetForTests clears caches and forces base dir detection to rerun.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
	baseDir = ""
	once = sync.Once{}
}

// Render parses and executes a template file together with layout.html and
// shared funcs. name is the filename relative to the templates dir
// (e.g. "dashboard.html").
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	if baseDir == "" {
		once.Do(detectBase)
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		_, loggedIn := auth.UserIDFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
	}
	if _, exists := data["IsAdmin"]; !exists {
		admin := false
		if isAdminResolver != nil {
			admin = isAdminResolver(r)
		}
		data["IsAdmin"] = admin
	}
	if _, exists := data["Theme"]; !exists {
		data["Theme"] = middleware.ThemeFrom(r)
	}

	key := name
	devMode := os.Getenv("DEV") == "1"
	if !devMode {
		tplCache.RLock()
		t, ok := tplCache.m[key]
		tplCache.RUnlock()
		if ok && t != nil {
			return t.Execute(w, data)
		}
	}

	mainPath := filepath.Join(baseDir, name)
	if _, err := os.Stat(mainPath); err != nil {
		// Fallback search across relative parent levels; tests may run
		// with a different working directory.
		candidates := []string{
			filepath.Join("templates", name),
			filepath.Join("../templates", name),
			filepath.Join("../../templates", name),
			filepath.Join("../../../templates", name),
		}
		for _, c := range candidates {
			if fi, e2 := os.Stat(c); e2 == nil && !fi.IsDir() {
				mainPath = c
				break
			}
		}
	}

	files := []string{mainPath}
	layout := filepath.Join(filepath.Dir(mainPath), "layout.html")
	if fi, err := os.Stat(layout); err == nil && !fi.IsDir() && filepath.Base(mainPath) != "layout.html" {
		files = append([]string{layout}, files...)
	}
	t, err := template.New(filepath.Base(files[0])).Funcs(Funcs()).ParseFiles(files...)
	if err != nil {
		return err
	}
	if !devMode {
		tplCache.Lock()
		tplCache.m[key] = t
		tplCache.Unlock()
	}
	return t.Execute(w, data)
}
