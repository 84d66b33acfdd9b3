package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"

	DefaultOpenRouterBaseURL = "https://openrouter.ai/api"
	DefaultOpenRouterModel   = "openrouter/auto"
	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultTemperature       = 0.4
)

type Request struct {
	Provider     string
	BaseURL      string
	Model        string
	APIKey       string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
}

type Response struct {
	Text      string
	LatencyMS int64
}

type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if provider == "" {
		provider = ProviderOpenRouter
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return Response{}, fmt.Errorf("%s API Key 为空", provider)
	}
	start := time.Now()
	var (
		text string
		err  error
	)

	switch provider {
	case ProviderOpenRouter:
		text, err = c.generateOpenRouter(ctx, req)
	case ProviderOpenAI:
		text, err = c.generateOpenAI(ctx, req)
	default:
		err = fmt.Errorf("不支持的 provider：%s", provider)
	}
	if err != nil {
		return Response{}, err
	}
	return Response{Text: strings.TrimSpace(text), LatencyMS: time.Since(start).Milliseconds()}, nil
}

func (c *Client) generateOpenRouter(ctx context.Context, req Request) (string, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultOpenRouterModel
	}
	base := req.BaseURL
	if strings.TrimSpace(base) == "" {
		base = DefaultOpenRouterBaseURL
	}
	payload := map[string]any{
		"model":       model,
		"temperature": temperature(req.Temperature),
		"messages": []map[string]string{
			{"role": "system", "content": req.SystemPrompt},
			{"role": "user", "content": req.UserPrompt},
		},
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.doJSON(ctx, http.MethodPost, joinURL(base, "/v1/chat/completions"), req.APIKey, nil, payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("openrouter 错误：%s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter 返回为空")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openrouter 内容为空")
	}
	return text, nil
}

func (c *Client) generateOpenAI(ctx context.Context, req Request) (string, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		return "", fmt.Errorf("openai model 不能为空")
	}
	base := strings.TrimSpace(req.BaseURL)
	if base == "" {
		base = DefaultOpenAIBaseURL
	}
	client := oai.NewClient(
		option.WithAPIKey(req.APIKey),
		option.WithBaseURL(strings.TrimSuffix(base, "/")+"/"),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(0),
	)
	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(req.SystemPrompt),
			oai.UserMessage(req.UserPrompt),
		},
		Temperature: param.NewOpt(temperature(req.Temperature)),
	}
	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai 请求失败：%w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai 返回为空")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai 内容为空")
	}
	return text, nil
}

func temperature(t float64) float64 {
	if t <= 0 || t > 2 {
		return DefaultTemperature
	}
	return t
}

func (c *Client) doJSON(ctx context.Context, method, endpoint, bearer string, extraHeaders map[string]string, in any, out any) error {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return fmt.Errorf("编码请求失败：%w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, buf)
	if err != nil {
		return fmt.Errorf("创建请求失败：%w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(bearer) != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败：%w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败：%w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorMessage(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("解析响应失败：%w; 原始响应: %s", err, truncate(string(body), 800))
	}
	return nil
}

// errorMessage prefers error.message from a JSON error body.
func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && strings.TrimSpace(e.Error.Message) != "" {
		return e.Error.Message
	}
	return truncate(strings.TrimSpace(string(body)), 800)
}

func joinURL(base, path string) string {
	base = strings.TrimSuffix(strings.TrimSpace(base), "/")
	if strings.HasSuffix(base, "/v1") && strings.HasPrefix(path, "/v1/") {
		path = strings.TrimPrefix(path, "/v1")
	}
	if strings.HasPrefix(path, "/") {
		return base + path
	}
	return base + "/" + path
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
