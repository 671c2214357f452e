package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/config"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/models"
)

const validReport = `{
	"deepfakeScore": 82,
	"verdict": "Likely Deepfake",
	"integrity": {"score": 70, "notes": "noise"},
	"consistency": {"score": 60, "notes": "ok"},
	"aiPattern": {"score": 90, "notes": "GAN artifacts"},
	"temporal": {"score": 50, "notes": "n/a"}
}`

func testAnalyzer(endpoint string) *GeminiAnalyzer {
	return NewGeminiAnalyzer(config.GeminiConfig{
		APIKey:   "test-key",
		Model:    "gemini-test",
		Endpoint: endpoint,
	})
}

// textHandler answers every generateContent call with one candidate carrying
// the given text part.
func textHandler(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"candidates": []interface{}{
				map[string]interface{}{
					"content": map[string]interface{}{
						"parts": []interface{}{
							map[string]interface{}{"text": text},
						},
					},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestAnalyzeParsesValidReport(t *testing.T) {
	srv := httptest.NewServer(textHandler(validReport))
	defer srv.Close()

	got, err := testAnalyzer(srv.URL).Analyze(context.Background(), []byte("frame"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	want := &models.AnalysisResult{
		DeepfakeScore: 82,
		Verdict:       models.VerdictLikelyDeepfake,
		Integrity:     models.Metric{Score: 70, Notes: "noise"},
		Consistency:   models.Metric{Score: 60, Notes: "ok"},
		AIPattern:     models.Metric{Score: 90, Notes: "GAN artifacts"},
		Temporal:      models.Metric{Score: 50, Notes: "n/a"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("result = %+v, want %+v", got, want)
	}
}

func TestAnalyzeRequestShape(t *testing.T) {
	var captured generateRequest
	var path, key string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("request body did not decode: %v", err)
		}
		textHandler(validReport)(w, r)
	}))
	defer srv.Close()

	if _, err := testAnalyzer(srv.URL).Analyze(context.Background(), []byte("frame")); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if path != "/v1beta/models/gemini-test:generateContent" {
		t.Errorf("path = %q", path)
	}
	if key != "test-key" {
		t.Errorf("api key header = %q", key)
	}
	if captured.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Errorf("responseMimeType = %q", captured.GenerationConfig.ResponseMIMEType)
	}

	sch := captured.GenerationConfig.ResponseSchema
	if sch == nil {
		t.Fatal("request carried no response schema")
	}
	wantRequired := []string{"deepfakeScore", "verdict", "integrity", "consistency", "aiPattern", "temporal"}
	if !reflect.DeepEqual(sch.Required, wantRequired) {
		t.Errorf("schema required = %v, want %v", sch.Required, wantRequired)
	}

	if len(captured.Contents) != 1 || len(captured.Contents[0].Parts) != 2 {
		t.Fatalf("contents shape = %+v", captured.Contents)
	}
	if captured.Contents[0].Parts[0].Text == "" {
		t.Error("first part should carry the instruction text")
	}
	inline := captured.Contents[0].Parts[1].InlineData
	if inline == nil || inline.MIMEType != "image/jpeg" || inline.Data == "" {
		t.Errorf("second part should carry the inline JPEG, got %+v", inline)
	}
}

func TestAnalyzeEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := testAnalyzer(srv.URL).Analyze(context.Background(), []byte("frame"))
	if !models.IsKind(err, models.FailureEmptyResponse) {
		t.Errorf("failure kind = %v (%v), want empty response", models.KindOf(err), err)
	}
}

func TestAnalyzeUnparsableReport(t *testing.T) {
	srv := httptest.NewServer(textHandler("the model ignored the schema"))
	defer srv.Close()

	_, err := testAnalyzer(srv.URL).Analyze(context.Background(), []byte("frame"))
	if !models.IsKind(err, models.FailureMalformedResult) {
		t.Errorf("failure kind = %v (%v), want malformed result", models.KindOf(err), err)
	}
}

func TestAnalyzeRejectsIncompleteReport(t *testing.T) {
	cases := map[string]string{
		"missing deepfakeScore": `{"verdict":"Uncertain","integrity":{"score":1,"notes":""},"consistency":{"score":1,"notes":""},"aiPattern":{"score":1,"notes":""},"temporal":{"score":1,"notes":""}}`,
		"missing verdict":       `{"deepfakeScore":10,"integrity":{"score":1,"notes":""},"consistency":{"score":1,"notes":""},"aiPattern":{"score":1,"notes":""},"temporal":{"score":1,"notes":""}}`,
		"missing temporal":      `{"deepfakeScore":10,"verdict":"Uncertain","integrity":{"score":1,"notes":""},"consistency":{"score":1,"notes":""},"aiPattern":{"score":1,"notes":""}}`,
		"metric without notes":  `{"deepfakeScore":10,"verdict":"Uncertain","integrity":{"score":1},"consistency":{"score":1,"notes":""},"aiPattern":{"score":1,"notes":""},"temporal":{"score":1,"notes":""}}`,
		"score out of range":    `{"deepfakeScore":150,"verdict":"Uncertain","integrity":{"score":1,"notes":""},"consistency":{"score":1,"notes":""},"aiPattern":{"score":1,"notes":""},"temporal":{"score":1,"notes":""}}`,
		"unknown verdict":       `{"deepfakeScore":10,"verdict":"Banana","integrity":{"score":1,"notes":""},"consistency":{"score":1,"notes":""},"aiPattern":{"score":1,"notes":""},"temporal":{"score":1,"notes":""}}`,
	}

	for name, report := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(textHandler(report))
			defer srv.Close()

			result, err := testAnalyzer(srv.URL).Analyze(context.Background(), []byte("frame"))
			if result != nil {
				t.Fatalf("non-conforming report produced a result: %+v", result)
			}
			if !models.IsKind(err, models.FailureMalformedResult) {
				t.Errorf("failure kind = %v (%v), want malformed result", models.KindOf(err), err)
			}
		})
	}
}

func TestAnalyzeRemoteErrorKeepsProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	_, err := testAnalyzer(srv.URL).Analyze(context.Background(), []byte("frame"))
	if !models.IsKind(err, models.FailureRemote) {
		t.Fatalf("failure kind = %v (%v), want remote", models.KindOf(err), err)
	}
	if !strings.Contains(err.Error(), "quota exhausted") {
		t.Errorf("err = %v, want provider message preserved", err)
	}
}

func TestAnalyzeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(textHandler(validReport))
	srv.Close() // connection refused from here on

	_, err := testAnalyzer(srv.URL).Analyze(context.Background(), []byte("frame"))
	if !models.IsKind(err, models.FailureRemote) {
		t.Errorf("failure kind = %v (%v), want remote", models.KindOf(err), err)
	}
}

func TestAnalyzeWithoutAPIKeyMakesNoRequest(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		textHandler(validReport)(w, r)
	}))
	defer srv.Close()

	a := NewGeminiAnalyzer(config.GeminiConfig{Model: "gemini-test", Endpoint: srv.URL})
	_, err := a.Analyze(context.Background(), []byte("frame"))
	if !models.IsKind(err, models.FailureRemote) {
		t.Errorf("failure kind = %v (%v), want remote", models.KindOf(err), err)
	}
	if hits.Load() != 0 {
		t.Errorf("request went out without an API key")
	}
}
