package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client is a rate-limited Open Library API client. Requests that fail
// with 429 or 5xx are retried with exponential backoff.
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(userAgent string, rps int, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    "https://openlibrary.org",
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
}

// Listing is the catalog-relevant subset of an Open Library record:
// title, first-listed author, and a 13-digit ISBN.
type Listing struct {
	Title  string
	Author string
	ISBN13 string
}

// searchResponse matches search.json
type searchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Title       string   `json:"title"`
		AuthorNames []string `json:"author_name"`
		ISBN        []string `json:"isbn"`
	} `json:"docs"`
}

// bookDetails matches api/books?jscmd=data
type bookDetails struct {
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

// SearchSubject lists books on a subject. Records without an author or
// a usable 13-digit ISBN are dropped, so fewer than limit listings may
// come back.
func (c *Client) SearchSubject(ctx context.Context, subject string, limit int) ([]Listing, error) {
	u := fmt.Sprintf("%s/search.json?q=subject:%s&fields=title,author_name,isbn&limit=%d",
		c.baseURL, url.QueryEscape(subject), limit)

	var res searchResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}

	listings := make([]Listing, 0, len(res.Docs))
	for _, doc := range res.Docs {
		if len(doc.AuthorNames) == 0 {
			continue
		}
		isbn := pickISBN13(doc.ISBN)
		if isbn == "" {
			continue
		}
		listings = append(listings, Listing{
			Title:  doc.Title,
			Author: doc.AuthorNames[0],
			ISBN13: isbn,
		})
	}
	return listings, nil
}

// LookupISBN resolves a single 13-digit ISBN to a listing. A miss is
// reported as an error rather than an empty listing.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (Listing, error) {
	u := fmt.Sprintf("%s/api/books?bibkeys=ISBN:%s&jscmd=data&format=json", c.baseURL, url.QueryEscape(isbn))

	var res map[string]bookDetails
	if err := c.get(ctx, u, &res); err != nil {
		return Listing{}, err
	}

	details, ok := res["ISBN:"+isbn]
	if !ok || details.Title == "" || len(details.Authors) == 0 {
		return Listing{}, fmt.Errorf("no open library record for isbn %s", isbn)
	}
	return Listing{
		Title:  details.Title,
		Author: details.Authors[0].Name,
		ISBN13: isbn,
	}, nil
}

// pickISBN13 returns the first 13-digit ISBN in the list, or "".
func pickISBN13(isbns []string) string {
	for _, isbn := range isbns {
		cleaned := strings.ReplaceAll(isbn, "-", "")
		if len(cleaned) != 13 {
			continue
		}
		allDigits := true
		for _, r := range cleaned {
			if r < '0' || r > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			return cleaned
		}
	}
	return ""
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
				continue
			}
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}
