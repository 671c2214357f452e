package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/config"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/logger"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/models"
)

// forensicPrompt is the fixed instruction sent with every frame. The report
// structure is enforced separately through the response schema; the prompt
// only describes the forensic criteria.
const forensicPrompt = `You are a digital image forensics expert. Analyze this screenshot for signs ` +
	`of deepfake or AI-generated content. Assess four aspects, each scored 0-100: ` +
	`integrity (compression and noise coherence), consistency (lighting, shadows, ` +
	`anatomy and perspective), aiPattern (GAN/diffusion generation artifacts) and ` +
	`temporal (motion blur and frame coherence, or "n/a" for a single still). ` +
	`Combine them into an overall deepfakeScore from 0 (certainly authentic) to 100 ` +
	`(certainly synthetic) and a verdict of "Likely Real", "Uncertain" or "Likely Deepfake".`

// GeminiAnalyzer submits frames to the Gemini generateContent API with a
// response schema constraining the model to the report structure. One request
// per scan, one attempt: transient failures are surfaced, not retried.
type GeminiAnalyzer struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGeminiAnalyzer creates a Gemini-backed analyzer. No client-side timeout
// is set; the caller's context is the only deadline.
func NewGeminiAnalyzer(cfg config.GeminiConfig) *GeminiAnalyzer {
	return &GeminiAnalyzer{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		client:   &http.Client{},
	}
}

// Name returns the backend name
func (g *GeminiAnalyzer) Name() string { return "gemini" }

// Description returns a short description of the backend
func (g *GeminiAnalyzer) Description() string {
	return "Gemini image forensics with schema-constrained JSON output"
}

// Request/response wire types for the generateContent endpoint. Only the
// fields this client uses are mapped.

type generateRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type schema struct {
	Type       string             `json:"type"`
	Enum       []string           `json:"enum,omitempty"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// reportSchema constrains the model response to the report structure. Every
// field is required; a response missing any of them is rejected client-side
// as well.
func reportSchema() *schema {
	metric := func() *schema {
		return &schema{
			Type: "object",
			Properties: map[string]*schema{
				"score": {Type: "number"},
				"notes": {Type: "string"},
			},
			Required: []string{"score", "notes"},
		}
	}
	return &schema{
		Type: "object",
		Properties: map[string]*schema{
			"deepfakeScore": {Type: "number"},
			"verdict": {
				Type: "string",
				Enum: []string{
					string(models.VerdictLikelyReal),
					string(models.VerdictUncertain),
					string(models.VerdictLikelyDeepfake),
				},
			},
			"integrity":   metric(),
			"consistency": metric(),
			"aiPattern":   metric(),
			"temporal":    metric(),
		},
		Required: []string{"deepfakeScore", "verdict", "integrity", "consistency", "aiPattern", "temporal"},
	}
}

// Analyze submits the frame and validates the structured response.
// Failure classification, in order: transport/auth/quota problems are remote
// errors, a response without text is an empty response, and a payload that
// does not conform to the schema is a malformed result.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, frame []byte) (*models.AnalysisResult, error) {
	if g.apiKey == "" {
		return nil, models.NewRemoteError("Gemini API key not configured (set DEEPSCAN_GEMINI_API_KEY)", nil)
	}

	reqBody := generateRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: forensicPrompt},
				{InlineData: &inlineData{
					MIMEType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(frame),
				}},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   reportSchema(),
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, models.NewRemoteError("failed to encode analysis request", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.endpoint, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, models.NewRemoteError("failed to build analysis request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	logger.Debug("submitting frame for analysis", "model", g.model, "frame_bytes", len(frame))

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, models.NewRemoteError(fmt.Sprintf("analysis request failed: %v", err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewRemoteError("failed to read analysis response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewRemoteError(remoteMessage(resp.StatusCode, body), nil)
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, models.NewMalformedResultError("analysis response is not valid JSON: %v", err)
	}

	text := firstText(gr)
	if text == "" {
		return nil, models.NewEmptyResponseError("analysis response contained no text")
	}

	return parseReport(text)
}

// remoteMessage extracts the provider's error message when the error body is
// well formed, falling back to the HTTP status.
func remoteMessage(status int, body []byte) string {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Message != "" {
		return fmt.Sprintf("analysis service error (HTTP %d): %s", status, ae.Error.Message)
	}
	return fmt.Sprintf("analysis service error (HTTP %d)", status)
}

// firstText returns the first non-empty text part of the first candidate
func firstText(gr generateResponse) string {
	for _, c := range gr.Candidates {
		for _, p := range c.Content.Parts {
			if strings.TrimSpace(p.Text) != "" {
				return p.Text
			}
		}
	}
	return ""
}

// Pointer-typed mirror of the report so missing fields are distinguishable
// from zero values during validation.

type rawMetric struct {
	Score *float64 `json:"score"`
	Notes *string  `json:"notes"`
}

type rawReport struct {
	DeepfakeScore *float64   `json:"deepfakeScore"`
	Verdict       *string    `json:"verdict"`
	Integrity     *rawMetric `json:"integrity"`
	Consistency   *rawMetric `json:"consistency"`
	AIPattern     *rawMetric `json:"aiPattern"`
	Temporal      *rawMetric `json:"temporal"`
}

// parseReport validates the model's JSON text against the report schema.
// Violations are rejected, never coerced: a report is either fully valid or
// discarded.
func parseReport(text string) (*models.AnalysisResult, error) {
	var raw rawReport
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, models.NewMalformedResultError("report is not valid JSON: %v", err)
	}

	if raw.DeepfakeScore == nil {
		return nil, models.NewMalformedResultError("report is missing deepfakeScore")
	}
	if *raw.DeepfakeScore < 0 || *raw.DeepfakeScore > 100 {
		return nil, models.NewMalformedResultError("deepfakeScore %v out of range 0-100", *raw.DeepfakeScore)
	}
	if raw.Verdict == nil {
		return nil, models.NewMalformedResultError("report is missing verdict")
	}
	verdict, err := models.ParseVerdict(*raw.Verdict)
	if err != nil {
		return nil, models.NewMalformedResultError("report verdict invalid: %v", err)
	}

	metrics := []struct {
		name string
		raw  *rawMetric
		dst  *models.Metric
	}{
		{"integrity", raw.Integrity, nil},
		{"consistency", raw.Consistency, nil},
		{"aiPattern", raw.AIPattern, nil},
		{"temporal", raw.Temporal, nil},
	}

	result := &models.AnalysisResult{
		DeepfakeScore: *raw.DeepfakeScore,
		Verdict:       verdict,
	}
	metrics[0].dst = &result.Integrity
	metrics[1].dst = &result.Consistency
	metrics[2].dst = &result.AIPattern
	metrics[3].dst = &result.Temporal

	for _, m := range metrics {
		if m.raw == nil {
			return nil, models.NewMalformedResultError("report is missing %s metric", m.name)
		}
		if m.raw.Score == nil {
			return nil, models.NewMalformedResultError("report %s metric is missing score", m.name)
		}
		if *m.raw.Score < 0 || *m.raw.Score > 100 {
			return nil, models.NewMalformedResultError("report %s score %v out of range 0-100", m.name, *m.raw.Score)
		}
		if m.raw.Notes == nil {
			return nil, models.NewMalformedResultError("report %s metric is missing notes", m.name)
		}
		m.dst.Score = *m.raw.Score
		m.dst.Notes = *m.raw.Notes
	}

	return result, nil
}
