package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applykit/internal/pipeline"
	"github.com/jonathan/applykit/internal/tailoring"
	"github.com/jonathan/applykit/internal/types"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		JobAd:  types.JobAd{Text: "Senior Go Engineer"},
		Skills: types.SkillSet{"Go", "Kubernetes"},
		CV: &types.TailoredCV{
			Content:  "tailored cv",
			Template: "base cv",
			Analysis: &types.CVAnalysis{Keywords: []string{"Go"}},
		},
		Letters: []types.CoverLetter{
			{Content: "first", Version: 1},
			{Content: "second", Version: 2},
		},
		Errors: map[string]error{},
	}
}

func TestNew(t *testing.T) {
	res := sampleResult()
	res.Errors[pipeline.StepSkills] = errors.New("backend returned 503")

	s := New(res)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Senior Go Engineer", s.JobAd.Text)
	assert.Equal(t, map[string]string{"skills": "backend returned 503"}, s.Errors)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)
	assert.NotEqual(t, New(res).ID, s.ID)
}

func TestNew_EmptyArtifactsSerializeAsLists(t *testing.T) {
	s := New(&pipeline.Result{JobAd: types.JobAd{Text: "ad"}})
	assert.NotNil(t, s.Skills)
	assert.NotNil(t, s.Letters)
	assert.Nil(t, s.Errors)
}

func TestSetCVContent(t *testing.T) {
	s := New(sampleResult())
	before := s.UpdatedAt

	require.NoError(t, s.SetCVContent("edited cv"))
	assert.Equal(t, "edited cv", s.CV.Content)
	assert.Equal(t, "base cv", s.CV.Template)
	assert.False(t, s.UpdatedAt.Before(before))

	assert.ErrorIs(t, s.SetCVContent("   "), ErrEmptyContent)

	s.CV = nil
	assert.ErrorIs(t, s.SetCVContent("x"), ErrNoArtifact)
}

func TestSetCVContent_RefreshesQualityChecks(t *testing.T) {
	s := New(sampleResult())
	s.CV.Analysis.QualityChecks = []types.QualityCheck{
		{Name: "tone matches posting", Passed: true},
		{Name: tailoring.CheckPlaceholders, Passed: true},
	}

	require.NoError(t, s.SetCVContent("Go engineer at [Company Name]"))

	checks := map[string]bool{}
	for _, c := range s.CV.Analysis.QualityChecks {
		checks[c.Name] = c.Passed
	}
	assert.True(t, checks["tone matches posting"])
	assert.False(t, checks[tailoring.CheckPlaceholders])
	assert.False(t, checks[tailoring.CheckQuantified])
	assert.True(t, checks[tailoring.CheckKeywordCoverage])
	assert.Len(t, s.CV.Analysis.QualityChecks, 5)
}

func TestSetLetterContent(t *testing.T) {
	s := New(sampleResult())

	require.NoError(t, s.SetLetterContent(2, "edited second"))
	l, ok := s.Letter(2)
	require.True(t, ok)
	assert.Equal(t, "edited second", l.Content)

	l, _ = s.Letter(1)
	assert.Equal(t, "first", l.Content)

	assert.ErrorIs(t, s.SetLetterContent(3, "x"), ErrNoArtifact)
	assert.ErrorIs(t, s.SetLetterContent(1, ""), ErrEmptyContent)
}

func TestResult(t *testing.T) {
	s := New(sampleResult())
	res := s.Result()
	assert.Equal(t, s.CV, res.CV)
	assert.Len(t, res.Letters, 2)
}

func TestOpen(t *testing.T) {
	store, err := Open(context.Background(), "", "", 0)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = Open(context.Background(), "postgres", "", 0)
	assert.Error(t, err)

	_, err = Open(context.Background(), KindRedis, "not a url", 0)
	assert.Error(t, err)
}
