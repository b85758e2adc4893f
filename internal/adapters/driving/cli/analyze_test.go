package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repolens/internal/core/domain"
	"github.com/custodia-labs/repolens/internal/core/ports/driving"
)

// stubAnalyzer records the parsed repository and replays a result.
type stubAnalyzer struct {
	repo   domain.RepositoryRef
	result *driving.AnalysisResult
	err    error
}

func (s *stubAnalyzer) Analyze(_ context.Context, repo domain.RepositoryRef) (*driving.AnalysisResult, error) {
	s.repo = repo
	return s.result, s.err
}

// stubWriter records what was written.
type stubWriter struct {
	report   []byte
	chunks   []domain.Chunk
	combined string
}

func (w *stubWriter) WriteReport(report []byte) error {
	w.report = report
	return nil
}

func (w *stubWriter) WriteChunks(chunks []domain.Chunk) error {
	w.chunks = chunks
	return nil
}

func (w *stubWriter) WriteCombined(text string) error {
	w.combined = text
	return nil
}

func runAnalyzeCmd(t *testing.T, stub *stubAnalyzer, args ...string) (*stubWriter, string, error) {
	t.Helper()

	writer := &stubWriter{}
	analyzer = stub
	reportWriter = writer
	configDirFlag = t.TempDir()
	defer func() {
		analyzer = nil
		reportWriter = nil
		configDirFlag = ""
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"analyze"}, args...))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return writer, buf.String(), err
}

func analysisResult() *driving.AnalysisResult {
	repo := domain.RepositoryRef{Host: "github.com", Owner: "octo", Name: "demo"}
	graph := domain.NewGraph(repo)
	graph.Summary.TotalFiles = 2
	return &driving.AnalysisResult{
		Graph:  graph,
		Report: []byte(`{"repository":"octo/demo"}`),
		Text:   "flat text",
		Chunks: []domain.Chunk{{ID: "c", Index: 0, Content: "flat text"}},
	}
}

func TestAnalyzeCmd(t *testing.T) {
	t.Run("parses the repository reference", func(t *testing.T) {
		stub := &stubAnalyzer{result: analysisResult()}

		_, out, err := runAnalyzeCmd(t, stub, "octo/demo@main")

		require.NoError(t, err)
		assert.Equal(t, "octo", stub.repo.Owner)
		assert.Equal(t, "demo", stub.repo.Name)
		assert.Equal(t, "main", stub.repo.Ref)
		assert.Contains(t, out, "Files analysed:  2")
	})

	t.Run("writes all artifacts", func(t *testing.T) {
		stub := &stubAnalyzer{result: analysisResult()}

		writer, _, err := runAnalyzeCmd(t, stub, "octo/demo")

		require.NoError(t, err)
		assert.JSONEq(t, `{"repository":"octo/demo"}`, string(writer.report))
		require.Len(t, writer.chunks, 1)
		assert.Equal(t, "flat text", writer.combined)
	})

	t.Run("rejects a malformed reference", func(t *testing.T) {
		stub := &stubAnalyzer{result: analysisResult()}

		_, _, err := runAnalyzeCmd(t, stub, "not-a-repo")

		assert.ErrorIs(t, err, domain.ErrInvalidRepoRef)
	})

	t.Run("surfaces analysis failure", func(t *testing.T) {
		stub := &stubAnalyzer{err: errors.New("rate limit budget exhausted")}

		_, _, err := runAnalyzeCmd(t, stub, "octo/demo")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "analysis failed")
	})

	t.Run("requires exactly one argument", func(t *testing.T) {
		analyzer = &stubAnalyzer{result: analysisResult()}
		defer func() { analyzer = nil }()

		rootCmd.SetOut(new(bytes.Buffer))
		rootCmd.SetErr(new(bytes.Buffer))
		rootCmd.SetArgs([]string{"analyze"})
		defer rootCmd.SetArgs(nil)

		assert.Error(t, rootCmd.Execute())
	})
}
