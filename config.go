package spacetraveling

import (
	"time"

	"github.com/eringen/spacetraveling/readtime"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string // Site name, used in titles (default "spacetraveling")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite snapshot path (default "data/spacetraveling.db")

	Revalidate time.Duration  // How long fetched content is served before refetching (default 1h)
	Location   *time.Location // Time zone for publication dates (default UTC)

	PreviewSecret string // Session secret for content previews; empty disables previews
	CookieSecure  bool   // Set true for HTTPS

	OutDir          string // Static build output directory (default "dist")
	LocalizeBanners bool   // Download and resize banners during static builds
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/spacetraveling.db"
	}
	if c.Revalidate == 0 {
		c.Revalidate = time.Hour
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.OutDir == "" {
		c.OutDir = "dist"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithViews replaces the default templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithStore uses an already opened snapshot store instead of opening
// DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithEstimator replaces the reading-time estimator.
func WithEstimator(e *readtime.Estimator) Option {
	return func(a *App) {
		a.estimator = e
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
