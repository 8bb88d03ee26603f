package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Nomadcxx/jellyfix/internal/logging"
)

const (
	DefaultTMDBBaseURL = "https://api.themoviedb.org/3"
	TMDBImageBaseURL   = "https://image.tmdb.org/t/p"
)

// TMDB resolves titles against The Movie Database v3 API.
type TMDB struct {
	apiKey   string
	language string
	baseURL  string
	client   *http.Client
	logger   *logging.Logger
}

// TMDBOption configures a TMDB client.
type TMDBOption func(*TMDB)

// WithBaseURL points the client at another server (tests).
func WithBaseURL(u string) TMDBOption {
	return func(t *TMDB) { t.baseURL = u }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) TMDBOption {
	return func(t *TMDB) { t.client = c }
}

// WithLanguage sets the result language ("pt-BR").
func WithLanguage(lang string) TMDBOption {
	return func(t *TMDB) { t.language = lang }
}

// WithTMDBLogger sets the logger.
func WithTMDBLogger(l *logging.Logger) TMDBOption {
	return func(t *TMDB) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTMDB returns a client. It fails with ErrNoAPIKey when apiKey is empty.
func NewTMDB(apiKey string, timeout time.Duration, opts ...TMDBOption) (*TMDB, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	t := &TMDB{
		apiKey:  apiKey,
		baseURL: DefaultTMDBBaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

type tmdbSearchResult struct {
	Results []struct {
		ID            int    `json:"id"`
		Title         string `json:"title"`
		Name          string `json:"name"`
		OriginalTitle string `json:"original_title"`
		OriginalName  string `json:"original_name"`
		Overview      string `json:"overview"`
		PosterPath    string `json:"poster_path"`
		BackdropPath  string `json:"backdrop_path"`
		ReleaseDate   string `json:"release_date"`
		FirstAirDate  string `json:"first_air_date"`
	} `json:"results"`
}

type tmdbExternalIDs struct {
	IMDBID string `json:"imdb_id"`
	TVDBID int    `json:"tvdb_id"`
}

// SearchMovie returns the first movie result, retrying without year when the
// year-filtered search is empty.
func (t *TMDB) SearchMovie(ctx context.Context, title string, year int) (*Metadata, error) {
	md, err := t.search(ctx, "movie", title, year)
	if err != nil {
		return nil, err
	}
	t.attachExternalIDs(ctx, "movie", md)
	return md, nil
}

// SearchTVShow returns the best series result: the first of the top five
// whose first air year equals year, else the first result.
func (t *TMDB) SearchTVShow(ctx context.Context, title string, year int) (*Metadata, error) {
	md, err := t.search(ctx, "tv", title, year)
	if err != nil {
		return nil, err
	}
	t.attachExternalIDs(ctx, "tv", md)
	return md, nil
}

func (t *TMDB) search(ctx context.Context, kind, title string, year int) (*Metadata, error) {
	results, err := t.query(ctx, kind, title, year)
	if err != nil {
		return nil, err
	}
	if len(results.Results) == 0 && year > 0 {
		results, err = t.query(ctx, kind, title, 0)
		if err != nil {
			return nil, err
		}
	}
	if len(results.Results) == 0 {
		t.logger.Debug("metadata", "No results", logging.F("kind", kind), logging.F("title", title))
		return nil, ErrNotFound
	}

	pick := 0
	if kind == "tv" && year > 0 {
		for i, r := range results.Results {
			if i >= 5 {
				break
			}
			if yearOf(r.FirstAirDate) == year {
				pick = i
				break
			}
		}
	}

	r := results.Results[pick]
	md := &Metadata{
		TMDBID:        r.ID,
		Title:         r.Title,
		OriginalTitle: r.OriginalTitle,
		Overview:      r.Overview,
		PosterPath:    r.PosterPath,
		BackdropPath:  r.BackdropPath,
		Year:          yearOf(r.ReleaseDate),
	}
	if kind == "tv" {
		md.Title = r.Name
		md.OriginalTitle = r.OriginalName
		md.Year = yearOf(r.FirstAirDate)
	}
	t.logger.Debug("metadata", "Resolved title",
		logging.F("query", title),
		logging.F("title", md.Title),
		logging.F("year", md.Year),
		logging.F("tmdb_id", md.TMDBID))
	return md, nil
}

func (t *TMDB) query(ctx context.Context, kind, title string, year int) (*tmdbSearchResult, error) {
	params := url.Values{}
	params.Set("api_key", t.apiKey)
	params.Set("query", title)
	if t.language != "" {
		params.Set("language", t.language)
	}
	if year > 0 {
		if kind == "tv" {
			params.Set("first_air_date_year", strconv.Itoa(year))
		} else {
			params.Set("year", strconv.Itoa(year))
		}
	}

	var result tmdbSearchResult
	if err := t.getJSON(ctx, t.baseURL+"/search/"+kind+"?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// attachExternalIDs fills IMDb/TVDB ids. Failures leave them unset.
func (t *TMDB) attachExternalIDs(ctx context.Context, kind string, md *Metadata) {
	params := url.Values{}
	params.Set("api_key", t.apiKey)
	endpoint := fmt.Sprintf("%s/%s/%d/external_ids?%s", t.baseURL, kind, md.TMDBID, params.Encode())

	var ids tmdbExternalIDs
	if err := t.getJSON(ctx, endpoint, &ids); err != nil {
		t.logger.Debug("metadata", "External ids unavailable", logging.F("tmdb_id", md.TMDBID), logging.F("error", err.Error()))
		return
	}
	md.IMDBID = ids.IMDBID
	md.TVDBID = ids.TVDBID
}

func (t *TMDB) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("tmdb: %w (status %d)", ErrNoAPIKey, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 300:
		return fmt.Errorf("tmdb: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb decode: %w", err)
	}
	return nil
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
