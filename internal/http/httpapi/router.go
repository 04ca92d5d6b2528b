package httpapi

import (
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"podcastgen/internal/http/handlers"
	"podcastgen/internal/infra"
	"podcastgen/internal/infra/geoip"
	appmw "podcastgen/internal/middleware"
)

// RouterOptions carries the pieces the router needs beyond the handlers.
type RouterOptions struct {
	Logger          *infra.Logger
	CORSOrigins     []string
	RateLimitPerMin int
	Locator         geoip.Locator
	// OutputDir is served read-only under PublicPath.
	OutputDir  string
	PublicPath string
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	r := chi.NewRouter()

	r.Use(
		appmw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		appmw.Geo(opts.Locator),
		appmw.Logger(*logger),
		appmw.CORS(opts.CORSOrigins),
	)

	r.Get("/health", app.Health)
	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(appmw.RateLimit(opts.RateLimitPerMin, time.Minute))
		r.Post("/generate", app.GeneratePodcast)
		r.Post("/v1/podcasts", app.GeneratePodcast)
	})
	r.Get("/v1/podcasts/{job_id}/bundle", app.PodcastBundle)

	if opts.OutputDir != "" {
		public := "/" + strings.Trim(opts.PublicPath, "/")
		if public == "/" {
			public = "/output"
		}
		files := http.StripPrefix(public+"/", http.FileServer(filesOnly{http.Dir(opts.OutputDir)}))
		r.Handle(public+"/*", files)
	}

	return r
}

// filesOnly hides directories so job ids cannot be enumerated through the
// static output route.
type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
