package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaiduEndpoint is the general-purpose text translation endpoint.
const DefaultBaiduEndpoint = "https://fanyi-api.baidu.com/api/trans/vip/translate"

// ProviderError is a semantic error reported through the provider's own
// error channel rather than HTTP status.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %s: %s", e.Code, e.Message)
}

// BaiduProvider translates text through the Baidu fanyi HTTP API. Each
// request carries a freshly computed signature.
type BaiduProvider struct {
	endpoint string
	signer   *RequestSigner
	client   *http.Client
}

func NewBaiduProvider(appID, secret string, timeout time.Duration) *BaiduProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BaiduProvider{
		endpoint: DefaultBaiduEndpoint,
		signer:   NewRequestSigner(appID, secret),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *BaiduProvider) Name() string {
	return "baidu"
}

func (p *BaiduProvider) SupportedLanguages() []string {
	return SupportedTranslationLanguageCodes()
}

func (p *BaiduProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil {
		return nil, fmt.Errorf("baidu provider is nil")
	}
	if req.Text == "" {
		return nil, fmt.Errorf("text is required")
	}

	sourceLang := normalizeLangCode(req.SourceLang)
	if sourceLang == "" {
		sourceLang = SourceAuto
	}
	targetLang := normalizeLangCode(req.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}

	salt, sign := p.signer.Sign(req.Text)
	params := url.Values{}
	params.Set("q", req.Text)
	params.Set("from", sourceLang)
	params.Set("to", targetLang)
	params.Set("appid", p.signer.AppID())
	params.Set("salt", salt)
	params.Set("sign", sign)

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build translation request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send translation request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read translation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("translation endpoint status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed baiduResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode translation response: %w", err)
	}
	if parsed.ErrorCode != "" && parsed.ErrorCode != "0" {
		return nil, &ProviderError{Code: parsed.ErrorCode, Message: parsed.ErrorMsg}
	}
	if len(parsed.TransResult) == 0 {
		return nil, fmt.Errorf("translation response missing trans_result")
	}

	// The endpoint answers multi-line queries with one result row per line;
	// joining on "\n" restores the submitted shape.
	lines := make([]string, 0, len(parsed.TransResult))
	for _, row := range parsed.TransResult {
		lines = append(lines, row.Dst)
	}

	resolvedSource := normalizeLangCode(parsed.From)
	if resolvedSource == "" || resolvedSource == SourceAuto {
		resolvedSource = sourceLang
	}

	return &TranslateResponse{
		Text:         strings.Join(lines, "\n"),
		SourceLang:   resolvedSource,
		TargetLang:   targetLang,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

type baiduResponse struct {
	From        string `json:"from"`
	To          string `json:"to"`
	ErrorCode   string `json:"error_code"`
	ErrorMsg    string `json:"error_msg"`
	TransResult []struct {
		Src string `json:"src"`
		Dst string `json:"dst"`
	} `json:"trans_result"`
}
