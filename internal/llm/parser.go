package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yliu-xjtu/biomanager/internal/common"
	"github.com/yliu-xjtu/biomanager/internal/extract"
)

// maxPromptChars bounds how much document text is sent with the prompt.
const maxPromptChars = 3000

const fieldPrompt = `这是一篇论文的文本内容，请你从中提取以下信息：论文标题、作者列表、期刊/会议名称、出版年份。

请只返回一个 JSON 对象，不要添加任何解释或代码块标记，格式：
{"title": "...", "authors": "作者1; 作者2", "venue": "...", "year": 2023}

无法识别的字段请填 null。`

// Parser calls a chat-completions endpoint to read fields out of text the
// pattern cascades could not. It satisfies extract.FallbackParser.
type Parser struct {
	cfg    common.LLMConfig
	client *http.Client
	log    *slog.Logger
}

func NewParser(cfg common.LLMConfig, client *http.Client, log *slog.Logger) *Parser {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Parser{cfg: cfg, client: client, log: log}
}

// Enabled reports whether the parser is configured to make requests.
func (p *Parser) Enabled() bool {
	return p.cfg.Endpoint != "" && p.cfg.APIKey != ""
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type fieldReply struct {
	Title   *string `json:"title"`
	Authors *string `json:"authors"`
	Venue   *string `json:"venue"`
	Year    *int    `json:"year"`
}

// ParseFields sends the leading text to the configured model and decodes the
// strict-JSON reply. ok=false means unconfigured or an empty result; transport
// and validation problems come back as errors so the caller can log and move
// on without the fallback fields.
func (p *Parser) ParseFields(ctx context.Context, text string) (extract.FallbackFields, bool, error) {
	if !p.Enabled() {
		return extract.FallbackFields{}, false, nil
	}

	snippet := common.CapRunes(text, maxPromptChars)
	body, err := json.Marshal(chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: fieldPrompt + "\n\n论文文本内容：\n" + snippet},
		},
		MaxTokens: 500,
	})
	if err != nil {
		return extract.FallbackFields{}, false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return extract.FallbackFields{}, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return extract.FallbackFields{}, false, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return extract.FallbackFields{}, false, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return extract.FallbackFields{}, false,
			fmt.Errorf("llm api %d: %s", resp.StatusCode, common.Truncate(string(raw), 200))
	}

	var chat chatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return extract.FallbackFields{}, false, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return extract.FallbackFields{}, false, nil
	}

	reply, err := decodeReply(chat.Choices[0].Message.Content)
	if err != nil {
		return extract.FallbackFields{}, false, err
	}

	fields := extract.FallbackFields{}
	if reply.Title != nil {
		fields.Title = strings.TrimSpace(*reply.Title)
	}
	if reply.Authors != nil {
		fields.Authors = strings.TrimSpace(*reply.Authors)
	}
	if reply.Venue != nil {
		fields.Venue = strings.TrimSpace(*reply.Venue)
	}
	if reply.Year != nil {
		fields.Year = *reply.Year
	}
	ok := fields.Title != "" || fields.Authors != "" || fields.Venue != "" || fields.Year != 0
	p.log.Info("llm.parse_fields", "ok", ok)
	return fields, ok, nil
}

// decodeReply strips code fences models like to add, validates the JSON
// against the reply schema, and unmarshals it.
func decodeReply(content string) (fieldReply, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if err := ValidateReply([]byte(content)); err != nil {
		return fieldReply{}, err
	}
	var reply fieldReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return fieldReply{}, fmt.Errorf("unmarshal reply: %w", err)
	}
	return reply, nil
}
