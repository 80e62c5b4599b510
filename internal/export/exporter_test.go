package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applykit/internal/pipeline"
	"github.com/jonathan/applykit/internal/types"
)

type memSink struct {
	objects map[string][]byte
	types   map[string]string
	failOn  string
}

func newMemSink() *memSink {
	return &memSink{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memSink) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if key == m.failOn {
		return "", errors.New("disk full")
	}
	m.objects[key] = data
	m.types[key] = contentType
	return "mem://" + key, nil
}

func sampleDocs() pipeline.Documents {
	return pipeline.Documents{
		"cv":       {Editable: []byte("cv-docx"), PrintReady: []byte("cv-pdf")},
		"letter-1": {Editable: []byte("l1-docx"), PrintReady: []byte("l1-pdf")},
	}
}

func TestExport_Documents(t *testing.T) {
	sink := newMemSink()
	locs, err := New(sink, 1<<20, false, nil).Export(context.Background(), "run-1", sampleDocs(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"mem://run-1/cv.docx",
		"mem://run-1/cv.pdf",
		"mem://run-1/letter-1.docx",
		"mem://run-1/letter-1.pdf",
	}, locs)
	assert.Equal(t, []byte("l1-pdf"), sink.objects["run-1/letter-1.pdf"])
	assert.Equal(t, "application/pdf", sink.types["run-1/cv.pdf"])
	assert.Equal(t, types.KindDocx.ContentType(), sink.types["run-1/cv.docx"])
}

func TestExport_SizeLimit(t *testing.T) {
	sink := newMemSink()
	docs := pipeline.Documents{
		"cv": {Editable: []byte("small"), PrintReady: []byte("this payload is too large")},
	}

	locs, err := New(sink, 10, false, nil).Export(context.Background(), "run", docs, nil)
	require.Error(t, err)

	var tooLarge *FileTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, "cv.pdf", tooLarge.Name)
	assert.Equal(t, int64(10), tooLarge.Limit)
	assert.Equal(t, []string{"mem://run/cv.docx"}, locs)
}

func TestExport_SinkFailureKeepsGoing(t *testing.T) {
	sink := newMemSink()
	sink.failOn = "run/cv.docx"

	locs, err := New(sink, 0, false, nil).Export(context.Background(), "run", sampleDocs(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, locs, 3)
}

func TestExport_Intermediate(t *testing.T) {
	sink := newMemSink()
	res := &pipeline.Result{
		Skills: types.SkillSet{"Go", "gRPC"},
		CV: &types.TailoredCV{
			Content:  "tailored cv",
			Analysis: &types.CVAnalysis{Keywords: []string{"Go"}},
		},
		Letters: []types.CoverLetter{{Content: "dear team", Version: 1}},
	}

	locs, err := New(sink, 0, true, nil).Export(context.Background(), "run", pipeline.Documents{}, res)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"mem://run/cv.txt",
		"mem://run/letter-1.txt",
		"mem://run/skills.txt",
		"mem://run/cv-analysis.json",
	}, locs)
	assert.Equal(t, "Go\ngRPC\n", string(sink.objects["run/skills.txt"]))
	assert.Contains(t, string(sink.objects["run/cv-analysis.json"]), `"keywords": [`)
}

func TestExport_IntermediateDisabled(t *testing.T) {
	sink := newMemSink()
	res := &pipeline.Result{Skills: types.SkillSet{"Go"}}

	locs, err := New(sink, 0, false, nil).Export(context.Background(), "run", pipeline.Documents{}, res)
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestDirSink(t *testing.T) {
	root := t.TempDir()
	loc, err := DirSink{Root: root}.Put(context.Background(), "run/cv.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "run", "cv.pdf"), loc)
	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}
