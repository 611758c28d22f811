// Package imagery finds and attributes stock photos for recipes
package imagery

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

const (
	defaultPerPage = 10
	maxPerPage     = 30
	maxSearches    = 3
)

// Config tunes pacing and caching of photo searches
type Config struct {
	AppName           string
	RequestsPerSecond float64
	MinJitter         time.Duration
	MaxJitter         time.Duration
	CacheTTL          time.Duration
	TrackTimeout      time.Duration
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "cookbook"
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 3
	}
	if c.MaxJitter < c.MinJitter {
		c.MaxJitter = c.MinJitter
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	if c.TrackTimeout <= 0 {
		c.TrackTimeout = 10 * time.Second
	}
}

// Service implements inbound.ImageService
type Service struct {
	photos  outbound.PhotoSearcher
	cache   outbound.CacheRepository
	limiter *rate.Limiter
	cfg     Config
	logger  *zap.Logger

	randMu sync.Mutex
	rand   *rand.Rand

	tracking sync.WaitGroup
}

// NewService creates the imagery service. cache may be nil.
func NewService(photos outbound.PhotoSearcher, cache outbound.CacheRepository, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	return &Service{
		photos:  photos,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cfg:     cfg,
		logger:  logger.Named("imagery-service"),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClampPerPage bounds a page size to what the provider accepts
func ClampPerPage(perPage int) int {
	switch {
	case perPage <= 0:
		return defaultPerPage
	case perPage > maxPerPage:
		return maxPerPage
	default:
		return perPage
	}
}

// Search runs a cached photo search
func (s *Service) Search(ctx context.Context, req inbound.PhotoSearchRequest) (*outbound.PhotoSearchResult, error) {
	query := outbound.PhotoSearchQuery{
		Query:       strings.TrimSpace(req.Query),
		Page:        req.Page,
		PerPage:     ClampPerPage(req.PerPage),
		Orientation: req.Orientation,
	}
	if query.Query == "" {
		return nil, errors.NewValidationError("query is required")
	}
	if query.Page < 1 {
		query.Page = 1
	}

	key := searchKey(query)
	if cached, ok := s.getCached(ctx, key); ok {
		return cached, nil
	}

	result, err := s.photos.Search(ctx, query)
	if err != nil {
		return nil, s.externalError(err)
	}

	s.setCached(ctx, key, result)
	return result, nil
}

// TrackDownload pings the download endpoint in the background. The
// request context is not used so the ping outlives the HTTP call.
func (s *Service) TrackDownload(downloadLocation string) {
	if downloadLocation == "" {
		return
	}
	s.tracking.Add(1)
	go func() {
		defer s.tracking.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TrackTimeout)
		defer cancel()

		if err := s.photos.TrackDownload(ctx, downloadLocation); err != nil {
			s.logger.Warn("Download tracking failed", zap.String("location", downloadLocation), zap.Error(err))
		}
	}()
}

// Wait blocks until pending download pings have finished
func (s *Service) Wait() {
	s.tracking.Wait()
}

// ImagesForRecipe picks up to count distinct photos for r. The first
// search decides success; later ones only add photos.
func (s *Service) ImagesForRecipe(ctx context.Context, r *recipe.Recipe, count int) ([]recipe.RecipeImage, error) {
	if count <= 0 {
		return []recipe.RecipeImage{}, nil
	}

	queries := searchTerms(r)
	seen := make(map[string]bool)
	images := make([]recipe.RecipeImage, 0, count)

	for i, term := range queries {
		if len(images) >= count {
			break
		}
		if i > 0 {
			if err := s.pause(ctx); err != nil {
				return images, nil
			}
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return images, nil
		}

		result, err := s.photos.Search(ctx, outbound.PhotoSearchQuery{
			Query:       term,
			Page:        1,
			PerPage:     5,
			Orientation: "landscape",
		})
		if err != nil {
			if i == 0 {
				return nil, s.externalError(err)
			}
			s.logger.Warn("Skipping failed photo search", zap.String("query", term), zap.Error(err))
			continue
		}

		for _, photo := range result.Results {
			if seen[photo.ID] {
				continue
			}
			seen[photo.ID] = true
			images = append(images, ToRecipeImage(photo, s.cfg.AppName))
			s.TrackDownload(photo.Links.DownloadLocation)
			break
		}
	}

	s.logger.Debug("Attached recipe images",
		zap.String("title", r.Title),
		zap.Int("requested", count),
		zap.Int("found", len(images)),
	)
	return images, nil
}

// searchTerms lists the title, the primary ingredient and the first tag
func searchTerms(r *recipe.Recipe) []string {
	terms := make([]string, 0, maxSearches)
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		for _, existing := range terms {
			if strings.EqualFold(existing, term) {
				return
			}
		}
		terms = append(terms, term)
	}

	add(r.Title)
	if len(r.Ingredients) > 0 {
		add(r.Ingredients[0].Name)
	}
	if len(r.Tags) > 0 {
		add(r.Tags[0] + " food")
	}
	return terms
}

func (s *Service) pause(ctx context.Context) error {
	delay := s.jitter()
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) jitter() time.Duration {
	spread := s.cfg.MaxJitter - s.cfg.MinJitter
	if spread <= 0 {
		return s.cfg.MinJitter
	}
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.cfg.MinJitter + time.Duration(s.rand.Int63n(int64(spread)+1))
}

// ToRecipeImage converts a search hit into an attributed image. Both
// attribution links carry the utm parameters exactly once.
func ToRecipeImage(photo outbound.Photo, utm string) recipe.RecipeImage {
	profile := photo.User.Links.HTML
	if profile == "" && photo.User.Username != "" {
		profile = "https://unsplash.com/@" + url.PathEscape(photo.User.Username)
	}
	alt := photo.AltDescription
	if alt == "" {
		alt = photo.Description
	}

	return recipe.RecipeImage{
		ID:               photo.ID,
		URL:              photo.URLs.Regular,
		ThumbURL:         photo.URLs.Thumb,
		Alt:              alt,
		AuthorName:       photo.User.Name,
		AuthorUsername:   photo.User.Username,
		CreditURL:        WithUTM(profile, utm),
		SourceURL:        WithUTM(photo.Links.HTML, utm),
		DownloadLocation: photo.Links.DownloadLocation,
	}
}

// WithUTM sets the referral parameters on raw, replacing any present
func WithUTM(raw, utm string) string {
	if raw == "" {
		return ""
	}
	referral := url.Values{"utm_source": {utm}, "utm_medium": {"referral"}}

	u, err := url.Parse(raw)
	if err != nil {
		return appendUTM(raw, referral)
	}
	q := u.Query()
	q.Set("utm_source", utm)
	q.Set("utm_medium", "referral")
	u.RawQuery = q.Encode()
	return u.String()
}

// appendUTM edits a URL that net/url rejects as text. Existing referral
// pairs are dropped and the rest of the query is left untouched.
func appendUTM(raw string, referral url.Values) string {
	rest, fragment, hasFragment := strings.Cut(raw, "#")
	base, query, _ := strings.Cut(rest, "?")

	var kept []string
	for _, pair := range strings.Split(query, "&") {
		if pair == "" || strings.HasPrefix(pair, "utm_source=") || strings.HasPrefix(pair, "utm_medium=") {
			continue
		}
		kept = append(kept, pair)
	}
	kept = append(kept, referral.Encode())

	out := base + "?" + strings.Join(kept, "&")
	if hasFragment {
		out += "#" + fragment
	}
	return out
}

func searchKey(q outbound.PhotoSearchQuery) string {
	return fmt.Sprintf("photos:%s:%d:%d:%s", strings.ToLower(q.Query), q.Page, q.PerPage, q.Orientation)
}

func (s *Service) getCached(ctx context.Context, key string) (*outbound.PhotoSearchResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var result outbound.PhotoSearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (s *Service) setCached(ctx context.Context, key string, result *outbound.PhotoSearchResult) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("Photo cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) externalError(err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.NewExternalServiceError("photo search", err)
}
