package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/aristath/zappy/internal/config"
)

const (
	DefaultImageModel  = "dall-e-3"
	DefaultImageSize   = "1024x1024"
	DefaultSpeechModel = "tts-1"
	DefaultVoice       = "alloy"
)

// OpenAIOptions configures both the imager and the narrator.
type OpenAIOptions struct {
	APIKey      string
	BaseURL     string
	ImageModel  string
	ImageSize   string
	SpeechModel string
	Voice       string
	HTTPClient  *http.Client
}

func newOpenAIClient(o OpenAIOptions) *openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(o.APIKey),
		option.WithMaxRetries(0),
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	client := openai.NewClient(opts...)
	return &client
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// OpenAIImager generates images with the OpenAI images API.
type OpenAIImager struct {
	client *openai.Client
	model  string
	size   string
	keySet bool
}

// NewOpenAIImager creates an imager.
func NewOpenAIImager(o OpenAIOptions) *OpenAIImager {
	return &OpenAIImager{
		client: newOpenAIClient(o),
		model:  orDefault(o.ImageModel, DefaultImageModel),
		size:   orDefault(o.ImageSize, DefaultImageSize),
		keySet: o.APIKey != "",
	}
}

func (g *OpenAIImager) Image(ctx context.Context, prompt string) (string, error) {
	if !g.keySet {
		return "", &config.ConfigurationError{Component: "openai images", Missing: []string{"api_key"}}
	}

	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(g.model),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize(g.size),
	})
	if err != nil {
		return "", fmt.Errorf("generating image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("generating image: response contained no image url")
	}
	return resp.Data[0].URL, nil
}

// OpenAINarrator synthesizes MP3 narration and hands it to a Storage.
type OpenAINarrator struct {
	client  *openai.Client
	storage Storage
	model   string
	voice   string
	keySet  bool
}

// NewOpenAINarrator creates a narrator writing into storage.
func NewOpenAINarrator(o OpenAIOptions, storage Storage) *OpenAINarrator {
	return &OpenAINarrator{
		client:  newOpenAIClient(o),
		storage: storage,
		model:   orDefault(o.SpeechModel, DefaultSpeechModel),
		voice:   orDefault(o.Voice, DefaultVoice),
		keySet:  o.APIKey != "",
	}
}

func (n *OpenAINarrator) Narrate(ctx context.Context, key, text string) (string, error) {
	if !n.keySet {
		return "", &config.ConfigurationError{Component: "openai speech", Missing: []string{"api_key"}}
	}

	resp, err := n.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(n.model),
		Voice:          openai.AudioSpeechNewParamsVoice(n.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return "", fmt.Errorf("synthesizing speech: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading speech: %w", err)
	}
	if len(audio) == 0 {
		return "", errors.New("synthesizing speech: empty audio")
	}

	return n.storage.Put(ctx, key+".mp3", "audio/mpeg", audio)
}
