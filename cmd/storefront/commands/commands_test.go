package commands

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/composable-commerce/storefront/internal/audit"
	"github.com/composable-commerce/storefront/internal/config"
	"github.com/composable-commerce/storefront/internal/testing/mock"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", formatTable, false},
		{"table", formatTable, false},
		{"YAML", formatYAML, false},
		{"yml", formatYAML, false},
		{" json ", formatJSON, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetaobjectDocuments(t *testing.T) {
	api := mock.NewCommerce()

	docs, err := metaobjectDocuments(context.Background(), api, "footer")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "footer", docs[0].Title)
	assert.Equal(t, "gid://shopify/Metaobject/10", docs[0].ID)

	var buf bytes.Buffer
	require.NoError(t, writeDocuments(&buf, formatTable, docs))
	out := buf.String()
	assert.Contains(t, out, "footer (gid://shopify/Metaobject/10)")
	assert.Contains(t, out, "company_menu.heading")
	assert.Contains(t, out, "© Demo Store")
}

func TestMetaobjectDocumentsErrors(t *testing.T) {
	api := mock.NewCommerce()

	_, err := metaobjectDocuments(context.Background(), api, "missing")
	assert.ErrorContains(t, err, `no metaobjects of type "missing"`)

	upstream := errors.New("throttled")
	api.Fail("FetchAllMetaobjects", upstream)
	_, err = metaobjectDocuments(context.Background(), api, "footer")
	assert.ErrorIs(t, err, upstream)
}

func TestEntryDocument(t *testing.T) {
	api := mock.NewContent()

	doc, err := entryDocument(context.Background(), api, mock.HomeContentType, "")
	require.NoError(t, err)
	assert.Equal(t, "Home", doc.Title)
	assert.Equal(t, "blt-home", doc.ID)

	var buf bytes.Buffer
	require.NoError(t, writeDocuments(&buf, formatYAML, []document{doc}))

	var decoded []document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)

	var titles []string
	for _, r := range decoded[0].Fields {
		if r.Path == "banner.banner_title" {
			titles = append(titles, r.Value)
		}
	}
	assert.Equal(t, []string{"Layer up"}, titles)

	byUID, err := entryDocument(context.Background(), api, mock.PagesContentType, mock.PagesEntryUID)
	require.NoError(t, err)
	assert.Equal(t, mock.PagesEntryUID, byUID.ID)

	_, err = entryDocument(context.Background(), api, mock.PagesContentType, "blt-missing")
	assert.Error(t, err)
}

func checkConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Commerce.StoreDomain = "demo.myshopify.com"
	cfg.Commerce.PublicToken = "public-token"
	cfg.Session.Secret = "test-session-secret"
	cfg.Content.HomeContentType = mock.HomeContentType
	return cfg
}

func TestRunProbes(t *testing.T) {
	t.Run("all ok", func(t *testing.T) {
		results := runProbes(context.Background(), checkProbes(checkConfig(), mock.NewCommerce(), mock.NewContent(), nil))
		require.Len(t, results, 4)

		assert.Equal(t, "config", results[0].Name)
		assert.Equal(t, "ok", results[0].Status)
		assert.Equal(t, "ok", results[1].Status)
		assert.Contains(t, results[1].Detail, "Demo Store")
		assert.Equal(t, "ok", results[2].Status)
		assert.Contains(t, results[2].Detail, "blt-home")
		assert.Equal(t, "disabled", results[3].Status)

		var buf bytes.Buffer
		assert.NoError(t, reportProbes(&buf, results))
		assert.Contains(t, buf.String(), "All checks passed")
	})

	t.Run("failures", func(t *testing.T) {
		cfg := checkConfig()
		cfg.Session.Secret = ""
		shop := mock.NewCommerce()
		shop.Fail("Shop", errors.New("401 unauthorized"))

		results := runProbes(context.Background(), checkProbes(cfg, shop, nil, failedPinger{errors.New("connection refused")}))
		assert.Equal(t, "failed", results[0].Status)
		assert.Contains(t, results[0].Detail, "session.secret")
		assert.Equal(t, "failed", results[1].Status)
		assert.Equal(t, "disabled", results[2].Status)
		assert.Equal(t, "failed", results[3].Status)

		var buf bytes.Buffer
		err := reportProbes(&buf, results)
		assert.EqualError(t, err, "3 of 4 checks failed")
		assert.Contains(t, buf.String(), "connection refused")
	})
}

func TestEventsQuery(t *testing.T) {
	t.Cleanup(func() {
		eventsTypes, eventsSeverity = nil, nil
		eventsCustomer, eventsResource, eventsRequestID = "", "", ""
		eventsSince, eventsLimit = 0, 100
	})

	eventsTypes = []string{"login", "LOGIN_FAILED"}
	eventsSeverity = []string{"warning"}
	eventsCustomer = mock.CustomerEmail
	eventsSince = time.Hour
	eventsLimit = 10

	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	q := eventsQuery(now)

	assert.Equal(t, []audit.EventType{audit.EventLogin, audit.EventLoginFailed}, q.EventTypes)
	assert.Equal(t, []audit.Severity{audit.SeverityWarning}, q.Severities)
	assert.Equal(t, []string{mock.CustomerEmail}, q.Customers)
	assert.Nil(t, q.Resources)
	assert.Equal(t, now.Add(-time.Hour), q.StartTime)
	assert.Equal(t, 10, q.Limit)
}

func TestWriteEvents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEvents(&buf, formatTable, nil))
	assert.Equal(t, "No events found\n", buf.String())

	buf.Reset()
	events := []*audit.Event{{
		Timestamp: time.Now(),
		Type:      audit.EventFetchFailed,
		Severity:  audit.SeverityWarning,
		Source:    "commerce",
		Resource:  "footer",
		Action:    "fetch",
		Result:    "failure",
		Error:     "timeout",
	}}
	require.NoError(t, writeEvents(&buf, formatTable, events))
	assert.Contains(t, buf.String(), "FETCH_FAILED")
	assert.Contains(t, buf.String(), "timeout")
}

func TestRunInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	configFile = path
	initStoreDomain = "demo.myshopify.com"
	t.Cleanup(func() {
		configFile, initStoreDomain, initForce = "", "", false
	})

	var out bytes.Buffer
	initCmd.SetOut(&out)
	initCmd.SetContext(context.Background())
	require.NoError(t, runInit(initCmd, nil))
	assert.Contains(t, out.String(), "Configuration written to "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo.myshopify.com", cfg.Commerce.StoreDomain)

	initCmd.SetIn(strings.NewReader("n\n"))
	err = runInit(initCmd, nil)
	assert.ErrorContains(t, err, "already exists")

	initCmd.SetIn(strings.NewReader("y\n"))
	assert.NoError(t, runInit(initCmd, nil))

	initForce = true
	initCmd.SetIn(strings.NewReader(""))
	assert.NoError(t, runInit(initCmd, nil))
}
