package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"speech-relay/internal/application"
	"speech-relay/internal/domain"
	"speech-relay/internal/infra"
	"speech-relay/internal/infra/audio"
)

const provider = "google speech"

// SpeechClient calls the Cloud Speech-to-Text v1 recognize endpoint.
type SpeechClient struct {
	apiKey     string
	language   string
	httpClient *http.Client
	baseURL    string
}

func NewSpeechClient(apiKey, language string) *SpeechClient {
	return NewSpeechClientWithURL(apiKey, language, "https://speech.googleapis.com/v1")
}

func NewSpeechClientWithURL(apiKey, language, baseURL string) *SpeechClient {
	if language == "" {
		language = "en-US"
	}
	return &SpeechClient{
		apiKey:     apiKey,
		language:   language,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

type recognitionConfig struct {
	Encoding          string `json:"encoding"`
	SampleRateHertz   int    `json:"sampleRateHertz"`
	AudioChannelCount int    `json:"audioChannelCount,omitempty"`
	LanguageCode      string `json:"languageCode"`
}

type recognitionAudio struct {
	Content string `json:"content"`
}

type request struct {
	Config recognitionConfig `json:"config"`
	Audio  recognitionAudio  `json:"audio"`
}

type response struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Recognize drops the leading and trailing audio that stays under the
// attempt's energy threshold and sends the rest as LINEAR16.
func (c *SpeechClient) Recognize(ctx context.Context, wav []byte, attempt domain.RecognitionAttempt) (string, error) {
	clip, err := audio.Decode(bytes.NewReader(wav))
	if err != nil {
		return "", fmt.Errorf("decoding audio: %w", err)
	}

	voiced := clip.TrimSilence(attempt.EnergyThreshold)
	if voiced.Empty() {
		return "", application.ErrUnintelligible
	}

	reqBody := request{
		Config: recognitionConfig{
			Encoding:          "LINEAR16",
			SampleRateHertz:   voiced.SampleRate,
			AudioChannelCount: voiced.Channels,
			LanguageCode:      c.language,
		},
		Audio: recognitionAudio{
			Content: base64.StdEncoding.EncodeToString(voiced.WAV()),
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/speech:recognize?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &application.ServiceError{Provider: provider, Err: fmt.Errorf("sending request: %w", err)}
	}
	defer resp.Body.Close()

	if err := infra.CheckResponse(provider, resp); err != nil {
		return "", &application.ServiceError{Provider: provider, Err: err}
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &application.ServiceError{Provider: provider, Err: fmt.Errorf("decoding response: %w", err)}
	}

	parts := make([]string, 0, len(result.Results))
	for _, r := range result.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		if text := strings.TrimSpace(r.Alternatives[0].Transcript); text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", application.ErrUnintelligible
	}

	return strings.Join(parts, " "), nil
}
