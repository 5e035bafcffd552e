package companies

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ownership/internal/domain"
	"ownership/internal/platform/metrics"
)

type fakeRegistry struct {
	company domain.Company
	err     error
	calls   int
}

func (f *fakeRegistry) LookupSIREN(_ context.Context, siren string) (domain.Company, error) {
	f.calls++
	if f.err != nil {
		return domain.Company{}, f.err
	}
	return f.company, nil
}

type fakeCache struct {
	entries map[string]domain.Company
	getErr  error
}

func (f *fakeCache) Get(_ context.Context, siren string) (domain.Company, bool, error) {
	if f.getErr != nil {
		return domain.Company{}, false, f.getErr
	}
	c, ok := f.entries[siren]
	return c, ok, nil
}

func (f *fakeCache) Set(_ context.Context, c domain.Company) error {
	f.entries[c.SIREN] = c
	return nil
}

type fakeStore struct {
	rows map[string]domain.Company
}

func (f *fakeStore) UpsertCompany(_ context.Context, c domain.Company) error {
	f.rows[c.SIREN] = c
	return nil
}

func (f *fakeStore) GetCompany(_ context.Context, siren string) (domain.Company, error) {
	c, ok := f.rows[siren]
	if !ok {
		return domain.Company{}, domain.ErrNotFound
	}
	return c, nil
}

var acme = domain.Company{SIREN: "552100554", Name: "ACME", Address: "1 RUE DE LA PAIX 75002 PARIS", Status: "active"}

func lookups(m *metrics.Metrics, outcome string) float64 {
	return testutil.ToFloat64(m.RegistryLookups.WithLabelValues(outcome))
}

func TestGetIdentityFromRegistryIsRemembered(t *testing.T) {
	reg := &fakeRegistry{company: acme}
	cache := &fakeCache{entries: map[string]domain.Company{}}
	store := &fakeStore{rows: map[string]domain.Company{}}
	m := metrics.NewNop()
	svc := New(reg, cache, store, m, nil)

	got, err := svc.GetIdentity(context.Background(), "552 100 554")
	require.NoError(t, err)
	assert.Equal(t, acme, got)
	assert.Equal(t, acme, store.rows["552100554"])
	assert.Equal(t, acme, cache.entries["552100554"])

	_, err = svc.GetIdentity(context.Background(), "552100554")
	require.NoError(t, err)
	assert.Equal(t, 1, reg.calls, "second call served from cache")
	assert.Equal(t, 1.0, lookups(m, OutcomeFound))
	assert.Equal(t, 1.0, lookups(m, OutcomeCacheHit))
}

func TestGetIdentityFallsBackToStore(t *testing.T) {
	store := &fakeStore{rows: map[string]domain.Company{acme.SIREN: acme}}
	m := metrics.NewNop()

	svc := New(&fakeRegistry{err: errors.New("registry unavailable")}, nil, store, m, nil)
	got, err := svc.GetIdentity(context.Background(), acme.SIREN)
	require.NoError(t, err)
	assert.Equal(t, acme, got)
	assert.Equal(t, 1.0, lookups(m, OutcomeError))

	svc = New(nil, nil, store, m, nil)
	got, err = svc.GetIdentity(context.Background(), acme.SIREN)
	require.NoError(t, err)
	assert.Equal(t, acme, got)
	assert.Equal(t, 1.0, lookups(m, OutcomeDisabled))
}

func TestGetIdentityCacheErrorIsNotFatal(t *testing.T) {
	reg := &fakeRegistry{company: acme}
	cache := &fakeCache{entries: map[string]domain.Company{}, getErr: errors.New("redis down")}
	svc := New(reg, cache, &fakeStore{rows: map[string]domain.Company{}}, nil, nil)

	got, err := svc.GetIdentity(context.Background(), acme.SIREN)
	require.NoError(t, err)
	assert.Equal(t, acme, got)
	assert.Equal(t, 1, reg.calls)
}

func TestGetIdentityNotFound(t *testing.T) {
	m := metrics.NewNop()
	svc := New(&fakeRegistry{err: domain.ErrNotFound}, nil, &fakeStore{rows: map[string]domain.Company{}}, m, nil)

	_, err := svc.GetIdentity(context.Background(), "552100554")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1.0, lookups(m, OutcomeNotFound))
}

func TestGetIdentityOutageWithoutStoredRowIsUnavailable(t *testing.T) {
	outage := fmt.Errorf("registry %w: status 503", domain.ErrUnavailable)
	svc := New(&fakeRegistry{err: outage}, nil, &fakeStore{rows: map[string]domain.Company{}}, nil, nil)

	_, err := svc.GetIdentity(context.Background(), "552100554")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestGetIdentityInvalidSIREN(t *testing.T) {
	reg := &fakeRegistry{company: acme}
	svc := New(reg, nil, &fakeStore{rows: map[string]domain.Company{}}, nil, nil)

	_, err := svc.GetIdentity(context.Background(), "ACME")
	assert.ErrorIs(t, err, domain.ErrInvalidSIREN)
	assert.Zero(t, reg.calls)
}
