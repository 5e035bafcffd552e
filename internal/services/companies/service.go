package companies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ownership/internal/domain"
	"ownership/internal/platform/logger"
	"ownership/internal/platform/metrics"
	"ownership/internal/ports"
)

// Registry lookup outcomes, as counted in metrics.
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
	OutcomeDisabled = "disabled"
)

// Service resolves company identities: cache, then registry, then the stored row.
// registry and cache may be nil.
type Service struct {
	registry ports.Registry
	cache    ports.IdentityCache
	store    ports.CompanyRepository
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(registry ports.Registry, cache ports.IdentityCache, store ports.CompanyRepository, m *metrics.Metrics, l *slog.Logger) *Service {
	if l == nil {
		l = slog.Default()
	}
	return &Service{registry: registry, cache: cache, store: store, metrics: m, logger: l}
}

func (s *Service) GetIdentity(ctx context.Context, rawSIREN string) (domain.Company, error) {
	siren, err := domain.ValidateSIREN(rawSIREN)
	if err != nil {
		return domain.Company{}, err
	}
	ctx = logger.WithFields(ctx, logger.Fields{SIREN: siren, Component: "companies"})

	if s.cache != nil {
		c, ok, err := s.cache.Get(ctx, siren)
		if err != nil {
			s.logger.WarnContext(ctx, "identity cache read failed", "error", err)
		} else if ok {
			s.metrics.IncRegistryLookup(OutcomeCacheHit)
			return c, nil
		}
	}

	if s.registry == nil {
		s.metrics.IncRegistryLookup(OutcomeDisabled)
		return s.stored(ctx, siren)
	}

	c, err := s.registry.LookupSIREN(ctx, siren)
	switch {
	case err == nil:
		s.metrics.IncRegistryLookup(OutcomeFound)
		s.remember(ctx, c)
		return c, nil
	case errors.Is(err, domain.ErrNotFound):
		s.metrics.IncRegistryLookup(OutcomeNotFound)
	default:
		s.metrics.IncRegistryLookup(OutcomeError)
		s.logger.WarnContext(ctx, "registry lookup failed, using stored identity", "error", err)
		stored, serr := s.stored(ctx, siren)
		if errors.Is(serr, domain.ErrNotFound) {
			// Nothing stored does not mean the company does not exist.
			return domain.Company{}, fmt.Errorf("lookup %s: %w", siren, err)
		}
		return stored, serr
	}
	return s.stored(ctx, siren)
}

func (s *Service) remember(ctx context.Context, c domain.Company) {
	if err := s.store.UpsertCompany(ctx, c); err != nil {
		s.logger.WarnContext(ctx, "store identity failed", "error", err)
	}
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, c); err != nil {
		s.logger.WarnContext(ctx, "identity cache write failed", "error", err)
	}
}

func (s *Service) stored(ctx context.Context, siren string) (domain.Company, error) {
	c, err := s.store.GetCompany(ctx, siren)
	if err != nil {
		return domain.Company{}, err
	}
	return c, nil
}
