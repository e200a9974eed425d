package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/NeuralTrust/MediaGuard/pkg/infra/media"
	"github.com/mitchellh/mapstructure"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

const defaultOpenAIModel = "gpt-4o-mini"

type openAIOptions struct {
	Model  string `mapstructure:"model"`
	APIKey string `mapstructure:"api_key"`
}

// OpenAIClient asks a vision capable chat model to score every label and
// turns the scores into a probability distribution.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	device  string
	logger  *logrus.Logger
	parsers fastjson.ParserPool
}

func NewOpenAIClient(cfg Config, logger *logrus.Logger) (*OpenAIClient, error) {
	var opts openAIOptions
	if len(cfg.Options) > 0 {
		if err := mapstructure.Decode(cfg.Options, &opts); err != nil {
			return nil, fmt.Errorf("invalid openai options: %w", err)
		}
	}
	if opts.APIKey == "" {
		return nil, errors.New("openai api_key is required")
	}
	if opts.Model == "" {
		opts.Model = defaultOpenAIModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	cli := openai.NewClient(reqOpts...)

	return &OpenAIClient{
		client: &cli,
		model:  opts.Model,
		device: normalizeDevice(cfg.Device),
		logger: logger,
	}, nil
}

func (c *OpenAIClient) Name() string {
	return ProviderOpenAI
}

func (c *OpenAIClient) Device() string {
	return c.device
}

func (c *OpenAIClient) ClassifyImage(ctx context.Context, labels []string, img image.Image) ([]float64, error) {
	return c.classify(ctx, labels, []image.Image{img}, "an image")
}

func (c *OpenAIClient) ClassifyVideo(ctx context.Context, labels []string, frames []image.Image) ([]float64, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames to classify", ErrBackendCall)
	}
	return c.classify(ctx, labels, frames, fmt.Sprintf("%d frames sampled in order from one video", len(frames)))
}

func (c *OpenAIClient) classify(ctx context.Context, labels []string, images []image.Image, subject string) ([]float64, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(userPrompt(labels, subject)),
	}
	for _, img := range images {
		data, err := media.EncodePNG(img)
		if err != nil {
			return nil, err
		}
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		}))
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(parts),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.WithError(err).Error("openai classification request failed")
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendCall, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no completions returned", ErrBackendCall)
	}
	return c.parseScores(resp.Choices[0].Message.Content, labels)
}

// parseScores reads {"scores":{label:number}} and normalizes it over labels.
// Missing labels score zero.
func (c *OpenAIClient) parseScores(content string, labels []string) ([]float64, error) {
	p := c.parsers.Get()
	defer c.parsers.Put(p)

	v, err := p.Parse(stripCodeFence(content))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid scores: %v", ErrBackendCall, err)
	}
	scores := v.Get("scores")
	if scores == nil || scores.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("%w: response has no scores object", ErrBackendCall)
	}

	raw := make([]float64, len(labels))
	for i, label := range labels {
		item := scores.Get(label)
		if item == nil {
			continue
		}
		f, err := item.Float64()
		if err != nil || math.IsNaN(f) || f < 0 {
			continue
		}
		raw[i] = f
	}
	return normalize(raw), nil
}

func normalize(scores []float64) []float64 {
	var total float64
	for _, s := range scores {
		total += s
	}
	probs := make([]float64, len(scores))
	if total == 0 || math.IsInf(total, 0) {
		for i := range probs {
			probs[i] = 1 / float64(len(probs))
		}
		return probs
	}
	for i, s := range scores {
		probs[i] = s / total
	}
	return probs
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

const systemPrompt = `You are a zero-shot visual classifier. You receive visual content and a list
of candidate text labels. Estimate how well each label describes the content.
Reply with a single JSON object of the form {"scores": {"<label>": <number>}}
containing every label exactly as given and a non-negative number for each.
Do not add any other text.`

func userPrompt(labels []string, subject string) string {
	var b bytes.Buffer
	b.WriteString("Content: ")
	b.WriteString(subject)
	b.WriteString(".\nLabels:\n")
	for _, l := range labels {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}
