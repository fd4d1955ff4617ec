package backends

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOllamaServer fakes /api/generate, answering each request with reply(req).
func newOllamaServer(t *testing.T, reply func(req api.GenerateRequest) (int, string)) *api.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req api.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		code, body := reply(req)

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(code)
		if code >= http.StatusBadRequest {
			json.NewEncoder(w).Encode(map[string]string{"error": body})
			return
		}
		json.NewEncoder(w).Encode(api.GenerateResponse{Model: req.Model, Response: body, Done: true})
	}))
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	return api.NewClient(u, server.Client())
}

func TestExtractFinancial(t *testing.T) {
	var got api.GenerateRequest
	client := newOllamaServer(t, func(req api.GenerateRequest) (int, string) {
		got = req
		return http.StatusOK, "  Revenue grew.  "
	})
	o := &Ollama{Client: client, Reader: fakeReader{doc: fakeDoc{pages: []string{"Revenue 100", "Expenses 50"}}}}

	res, err := o.ExtractFinancial(context.Background(), "fin.pdf")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, ModelLlama, res.Model)
	assert.Equal(t, "Revenue grew.", res.Data)

	assert.Equal(t, DefaultLlamaModel, got.Model)
	assert.Contains(t, got.Prompt, "financial document expert")
	assert.Contains(t, got.Prompt, "--- Page 2 ---")
	require.NotNil(t, got.Stream)
	assert.False(t, *got.Stream)
}

func TestExtractLegalAndGeneralPrompts(t *testing.T) {
	var prompts []string
	client := newOllamaServer(t, func(req api.GenerateRequest) (int, string) {
		prompts = append(prompts, req.Prompt)
		return http.StatusOK, "ok"
	})
	o := &Ollama{Client: client, Reader: fakeReader{doc: fakeDoc{pages: []string{"text"}}}, LlamaModel: "llama3.2:3b"}

	_, err := o.ExtractLegal(context.Background(), "a.pdf")
	require.NoError(t, err)
	_, err = o.ExtractGeneral(context.Background(), "a.pdf")
	require.NoError(t, err)

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "legal document analyst")
	assert.Contains(t, prompts[1], "structured data expert")
}

func TestExtractSmallStripsEchoedPrompt(t *testing.T) {
	var got api.GenerateRequest
	client := newOllamaServer(t, func(req api.GenerateRequest) (int, string) {
		got = req
		return http.StatusOK, req.Prompt + "\n- Summary point"
	})
	o := &Ollama{Client: client, Reader: fakeReader{doc: fakeDoc{pages: []string{"Intro"}}}}

	res, err := o.ExtractSmall(context.Background(), "small.pdf")
	require.NoError(t, err)
	assert.Equal(t, ModelTinyLlama, res.Model)
	assert.Equal(t, "- Summary point", res.Data)

	assert.Equal(t, DefaultSmallModel, got.Model)
	assert.EqualValues(t, DefaultSmallMaxTokens, got.Options["num_predict"])
}

func TestOllamaRejection(t *testing.T) {
	client := newOllamaServer(t, func(api.GenerateRequest) (int, string) {
		return http.StatusNotFound, "model 'llama3.2' not found"
	})
	o := &Ollama{Client: client, Reader: fakeReader{doc: fakeDoc{pages: []string{"text"}}}}

	res, err := o.ExtractGeneral(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ModelLlama, res.Model)
	assert.Equal(t, "API Error: 404", res.Error)
}

func TestOllamaUnreachable(t *testing.T) {
	u, err := url.Parse("http://127.0.0.1:1")
	require.NoError(t, err)
	o := &Ollama{Client: api.NewClient(u, http.DefaultClient), Reader: fakeReader{doc: fakeDoc{pages: []string{"text"}}}}

	res, err := o.ExtractLegal(context.Background(), "a.pdf")
	assert.Nil(t, res)
	assert.Error(t, err)
}

func TestOllamaUnreadableDocument(t *testing.T) {
	o := &Ollama{Reader: fakeReader{err: errors.New("not a pdf")}}
	_, err := o.ExtractFinancial(context.Background(), "a.pdf")
	assert.ErrorContains(t, err, "not a pdf")
}

func TestAsk(t *testing.T) {
	var got api.GenerateRequest
	client := newOllamaServer(t, func(req api.GenerateRequest) (int, string) {
		got = req
		return http.StatusOK, " The term is 12 months. "
	})
	o := &Ollama{Client: client}

	answer, model, err := o.Ask(context.Background(), "The agreement lasts 12 months.", "How long is the term?")
	require.NoError(t, err)
	assert.Equal(t, "The term is 12 months.", answer)
	assert.Equal(t, ModelLlama, model)
	assert.Equal(t, AskSystemPrompt, got.System)
	assert.Contains(t, got.Prompt, "How long is the term?")
}

func TestOllamaDocumentTextFailure(t *testing.T) {
	o := &Ollama{Reader: fakeReader{doc: fakeDoc{pages: []string{"x"}, err: errors.New("pdftotext: exit status 1")}}}
	res, err := o.ExtractGeneral(context.Background(), "a.pdf")
	assert.Nil(t, res)
	assert.ErrorContains(t, err, "exit status 1")
}
