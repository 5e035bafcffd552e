package resultschema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ownership/internal/domain"
)

func validResult() domain.Result {
	return domain.Result{
		SIREN: "552100554",
		Depth: 3,
		Company: &domain.Company{
			SIREN: "552100554",
			Name:  "ACME",
		},
		Nodes: []domain.Node{
			{ID: "552100554", Label: "ACME", Group: domain.GroupTarget},
			{ID: domain.UnknownShareholderID, Label: "Actionnaire non public", Group: domain.GroupUnknown},
		},
		Edges: []domain.Edge{{From: domain.UnknownShareholderID, To: "552100554", Label: "N/A", Confidence: 20}},
		Summary: domain.Summary{
			MissingData: true,
			Sources:     "Sirene (identity only); ownership not public",
		},
		GeneratedAt: time.Now().UTC(),
	}
}

func TestDocument(t *testing.T) {
	doc, err := Document()
	require.NoError(t, err)

	var s map[string]any
	require.NoError(t, json.Unmarshal(doc, &s))
	assert.Equal(t, "object", s["type"])
	assert.Equal(t, false, s["additionalProperties"])
	assert.ElementsMatch(t,
		[]any{"siren", "depth", "nodes", "edges", "summary", "generated_at"},
		s["required"])
}

func TestValidate(t *testing.T) {
	v, err := New()
	require.NoError(t, err)
	require.NoError(t, v.Validate(validResult()))

	noCompany := validResult()
	noCompany.Company = nil
	assert.NoError(t, v.Validate(noCompany))
}

func TestValidateRejects(t *testing.T) {
	v := MustNew()
	cases := map[string]func(r *domain.Result){
		"bad siren":        func(r *domain.Result) { r.SIREN = "12345" },
		"depth too deep":   func(r *domain.Result) { r.Depth = 9 },
		"nil nodes":        func(r *domain.Result) { r.Nodes = nil },
		"unknown group":    func(r *domain.Result) { r.Nodes[0].Group = "parent" },
		"confidence > 100": func(r *domain.Result) { r.Edges[0].Confidence = 140 },
		"negative score":   func(r *domain.Result) { r.Summary.ConfidenceScore = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := validResult()
			mutate(&r)
			assert.ErrorIs(t, v.Validate(r), ErrInvalidResult)
		})
	}
}

func TestValidateJSONRejectsExtraFields(t *testing.T) {
	v := MustNew()
	b, err := json.Marshal(validResult())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	doc["owner"] = "someone"
	b, err = json.Marshal(doc)
	require.NoError(t, err)

	assert.ErrorIs(t, v.ValidateJSON(b), ErrInvalidResult)
	assert.ErrorIs(t, v.ValidateJSON([]byte("{")), ErrInvalidResult)
}
