// Package sirene looks up French companies by SIREN through the public
// "recherche d'entreprises" API, which serves Sirene data without credentials.
package sirene

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ownership/internal/domain"
)

// ErrUnavailable covers rate limiting, 5xx answers and transport failures.
var ErrUnavailable = fmt.Errorf("registry %w", domain.ErrUnavailable)

type Config struct {
	BaseURL string
	Token   string // optional; sent as a bearer token when set
	Timeout time.Duration
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Results []struct {
		SIREN             string `json:"siren"`
		NomComplet        string `json:"nom_complet"`
		NomRaisonSociale  string `json:"nom_raison_sociale"`
		EtatAdministratif string `json:"etat_administratif"`
		Siege             struct {
			Adresse string `json:"adresse"`
		} `json:"siege"`
	} `json:"results"`
	TotalResults int `json:"total_results"`
}

// searchPageSize leaves room for full-text hits ranked above the exact SIREN.
const searchPageSize = 5

// LookupSIREN returns the registry identity for siren, or domain.ErrNotFound.
func (c *Client) LookupSIREN(ctx context.Context, siren string) (domain.Company, error) {
	q := url.Values{}
	q.Set("q", siren)
	q.Set("page", "1")
	q.Set("per_page", strconv.Itoa(searchPageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return domain.Company{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Company{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Company{}, domain.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return domain.Company{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Company{}, fmt.Errorf("registry status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Company{}, fmt.Errorf("decoding registry response: %w", err)
	}
	for _, r := range payload.Results {
		if r.SIREN != siren {
			continue
		}
		name := r.NomComplet
		if name == "" {
			name = r.NomRaisonSociale
		}
		return domain.Company{
			SIREN:   r.SIREN,
			Name:    name,
			Address: r.Siege.Adresse,
			Status:  administrativeStatus(r.EtatAdministratif),
		}, nil
	}
	return domain.Company{}, domain.ErrNotFound
}

func administrativeStatus(code string) string {
	switch code {
	case "A":
		return "active"
	case "C":
		return "ceased"
	}
	return code
}
