package services

import (
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toolHomepage = `<!DOCTYPE html>
<html>
<head>
  <title>PromptPilot</title>
  <meta property="og:site_name" content="PromptPilot">
  <meta property="og:title" content="PromptPilot">
  <meta name="description" content="Write better prompts faster.">
  <meta property="og:description" content="Write better prompts faster.">
  <meta property="og:image" content="https://promptpilot.example.com/logo.png">
</head>
<body>
  <article>
    <h1>PromptPilot</h1>
    <p>PromptPilot helps teams write, test and share prompts for large language models. It keeps a versioned library of prompts and lets you compare outputs side by side.</p>
    <p>Connect your favourite model providers, run evaluations on real data and ship the prompts that work best. Everything is stored securely and can be exported at any time.</p>
    <p>Start for free, upgrade when your team grows. No credit card required to try every feature for fourteen days.</p>
  </article>
</body>
</html>`

func TestMetadataFetcher(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://promptpilot.example.com",
		httpmock.NewStringResponder(http.StatusOK, toolHomepage))
	httpmock.RegisterResponder(http.MethodGet, "https://gone.example.com",
		httpmock.NewStringResponder(http.StatusNotFound, "nope"))

	fetcher := NewMetadataFetcher(client)

	draft, err := fetcher.Fetch(ctx, "https://promptpilot.example.com")
	require.NoError(t, err)
	assert.Equal(t, "PromptPilot", draft.Name)
	assert.Contains(t, draft.Description, "Write better prompts faster.")
	assert.Equal(t, "https://promptpilot.example.com/logo.png", draft.LogoURL)
	assert.True(t, strings.HasPrefix(draft.Link, "https://promptpilot.example.com"))

	_, err = fetcher.Fetch(ctx, "https://gone.example.com")
	assert.Error(t, err)

	_, err = fetcher.Fetch(ctx, "javascript:alert(1)")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}
