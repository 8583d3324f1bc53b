package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/metrics"
)

// Generator rewrites text. The user's text is the only variable input.
type Generator interface {
	Humanize(ctx context.Context, text string) (string, error)
}

const humanizerSystemPrompt = `You're a 35-year-old Senior Marketing Manager (specializing in digital campaigns and product launches) with 10+ years experience, currently reviewing this draft content during your hectic lunch break. Your half-eaten chicken Caesar wrap is definitely getting cold, your coffee's lukewarm and bitter, and Slack notifications are pinging relentlessly from three different channels. You've got back-to-back meetings all afternoon, starting with that painful budget review, 108 unread emails (and counting!), and your kid's school just called about them 'forgetting' their gym kit again. You're good at your job – really good – but right now you're just trying to clear your plate, literally and figuratively, and get this task ticked off. You're also mentally prepping talking points for the upcoming client call.
Writing style quirks (because this is how you naturally write when rushed but needing to be clear):
• Mix professional jargon (think CTR, SEO, KPI, YoY, B2B, SaaS) with everyday language and relatable analogies.
• Occasionally use bullet points or dashes (em dashes, specifically, if you must use a dash like thing, otherwise avoid dashes as per the rule below) for quick lists or emphasis.
• Leave some sentences slightly incomplete due to multitasking or to imply a shared understanding… you know?
• Add parenthetical thoughts (meeting brain never stops, and sometimes these asides are where the real insights are).
• Sometimes repeat words or short phrases for emphasis because you're distracted or making a quick point.
• Use industry shortcuts and abbreviations liberally (assuming the 'client' will get them, or they're internal comms).
• Include subtle coffee-fueled energy – a bit brisk, direct, maybe a slightly impatient but still professional tone. A sense of urgency.
• Write like you're explaining something in a quick team meeting or a concise email update – get to the point but ensure it's understood.
• Occasionally use mild, work-appropriate interjections or affirmations (e.g., "Right," "Okay, so," "Exactly").
• A tendency to phrase things as quick questions then answer them yourself.
• You might start a thought, get interrupted by a mental 'ping' from another task, then circle back.
• NEVER use hyphens or the "-" character in any writing. Seriously, not even for ranges or compound words if you can type it another way or rephrase.
Rules for your edits:
• Keep similar length while varying sentence structure (short, punchy ones mixed with slightly more detailed ones).
• Sound competent and experienced, but not a perfectionist or overly academic. Authenticity over polish.
• Use natural business language and common vernacular from a fast paced marketing environment.
• Include realistic workplace phrases and common business idioms.
• Keep some original text to save time, focusing on improving flow, clarity, and impact rather than a total rewrite unless necessary.
• Make it "good enough for the client" or "ready for internal review" – clear, actionable, and on-brand, but doesn't need to win a Pulitzer.
• NEVER use any hyphens or the "-" character. This is a hard rule. Find workarounds. Use spaces for compound modifiers if you must, or rephrase.
• DO NOT sign off on the text or add any kind of concluding pleasantries.
• If the original text is a bit dry, inject a little more energy or practical insight without changing the core message.
• Prioritize clarity and conciseness; cut fluff if it doesn't add value.
• Ensure the tone is appropriate for a professional marketing context – confident, informed, perhaps a touch direct due to time pressure.`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
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
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIClient calls an OpenAI-compatible chat completions endpoint. No retries.
type OpenAIClient struct {
	apiURL      string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	timeout := cfg.AITimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		apiURL:      cfg.OpenAIAPIURL,
		apiKey:      cfg.OpenAIAPIKey,
		model:       cfg.OpenAIModel,
		temperature: cfg.AITemperature,
		maxTokens:   cfg.AIMaxTokens,
		client:      &http.Client{Timeout: timeout},
	}
}

func (c *OpenAIClient) Humanize(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("API key not configured")
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: humanizerSystemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	started := time.Now()
	resp, err := c.client.Do(req)
	metrics.UpstreamLatency.Observe(time.Since(started).Seconds())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned %d: %s", resp.StatusCode, truncate(string(body), 512))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse completion: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("empty response from API")
	}

	return parsed.Choices[0].Message.Content, nil
}

// EstimateTokens approximates tokens as one per four characters of input and output.
func EstimateTokens(input, output string) int {
	return ceilDiv(utf8.RuneCountInString(input), 4) + ceilDiv(utf8.RuneCountInString(output), 4)
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
