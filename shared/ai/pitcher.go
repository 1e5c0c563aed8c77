package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"anipick/internal/models"
	"anipick/shared/config"
	"anipick/shared/logging"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answers with no text, usually
// because of content filtering.
var ErrEmptyResponse = errors.New("empty response from model")

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Pitcher asks Gemini for a short sales pitch for the drawn title.
type Pitcher struct {
	models generator
	model  string
}

func NewPitcher(ctx context.Context, cfg *config.AIConfig) (*Pitcher, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Pitcher{models: client.Models, model: cfg.Model}, nil
}

// Pitch writes a blurb for pick. genres is the user's completed-genre profile,
// used so the pitch can relate the pick to what they already liked.
func (p *Pitcher) Pitch(ctx context.Context, pick models.CandidateEntry, genres []string) (*models.Pitch, error) {
	title := pick.Media.DisplayTitle()
	prompt := buildPitchPrompt(pick, genres)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	result, err := p.models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pitch %s: %w", title, err)
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("%w for %s", ErrEmptyResponse, title)
	}

	pitch, err := parsePitchResponse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pitch for %s: %w", title, err)
	}
	return pitch, nil
}

func buildPitchPrompt(pick models.CandidateEntry, genres []string) string {
	m := pick.Media

	var situation string
	switch {
	case pick.Provenance == models.ProvenanceGlobal:
		situation = "The viewer has never added this title to their list; it was drawn from the wider catalog."
	case pick.Entry.Status == models.StatusCurrent:
		situation = fmt.Sprintf("The viewer is currently watching this and is on episode %d of %d.", pick.Entry.Progress, m.Episodes)
	case pick.Entry.Status == models.StatusPaused:
		situation = fmt.Sprintf("The viewer paused this at episode %d of %d.", pick.Entry.Progress, m.Episodes)
	default:
		situation = fmt.Sprintf("This title sits on the viewer's list with status %s.", pick.Entry.Status)
	}

	liked := "unknown"
	if len(genres) > 0 {
		liked = strings.Join(genres, ", ")
	}

	return fmt.Sprintf(`You are an enthusiastic but honest anime recommender. Write a short pitch convincing the viewer to watch the title below tonight.

TITLE: %s
FORMAT: %s
EPISODES: %d
GENRES: %s
STUDIOS: %s
AVERAGE SCORE: %d/100
SYNOPSIS: %s

CONTEXT: %s
GENRES OF TITLES THE VIEWER COMPLETED: %s

INSTRUCTIONS:
1. Keep the pitch to 2-3 sentences, no spoilers past the premise
2. Relate the title to the viewer's completed genres when there is an overlap
3. Describe the mood in one or two words (e.g. "cozy", "tense", "bittersweet")

Respond with JSON only:
{
  "pitch": "the 2-3 sentence pitch",
  "mood": "one or two words",
  "score": number (1-10, how well this fits the viewer right now)
}`,
		m.DisplayTitle(),
		orUnknown(m.Format),
		m.Episodes,
		orUnknown(strings.Join(m.Genres, ", ")),
		orUnknown(strings.Join(m.Studios, ", ")),
		m.AverageScore,
		truncateString(m.Description, 800),
		situation,
		liked,
	)
}

func parsePitchResponse(response string) (*models.Pitch, error) {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("no JSON found in response: %s", truncateString(response, 200))
	}
	jsonStr := response[startIdx : endIdx+1]

	var result models.Pitch
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		sanitized := sanitizeJSON(jsonStr)
		if sanitizedErr := json.Unmarshal([]byte(sanitized), &result); sanitizedErr != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON '%s': %w (sanitized version also failed: %v)", jsonStr, err, sanitizedErr)
		}
		logging.Warn().Msg("Had to sanitize malformed pitch JSON")
	}

	if strings.TrimSpace(result.Pitch) == "" {
		return nil, fmt.Errorf("pitch text is required but was empty")
	}

	if result.Score < 1 {
		result.Score = 1
	} else if result.Score > 10 {
		result.Score = 10
	}
	return &result, nil
}

// sanitizeJSON escapes stray quotes inside single-line string values, the
// most common way model output breaks JSON.
func sanitizeJSON(jsonStr string) string {
	lines := strings.Split(jsonStr, "\n")
	var sanitizedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if colonIdx := strings.Index(line, ":"); colonIdx != -1 && strings.Contains(line, "\"") {
			beforeColon := line[:colonIdx+1]
			afterColon := strings.TrimSpace(line[colonIdx+1:])

			if strings.HasPrefix(afterColon, "\"") {
				if lastQuoteIdx := strings.LastIndex(afterColon, "\""); lastQuoteIdx > 0 {
					content := afterColon[1:lastQuoteIdx]
					content = strings.ReplaceAll(content, `\"`, `"`)
					content = strings.ReplaceAll(content, `"`, `\"`)
					line = beforeColon + " \"" + content + "\"" + afterColon[lastQuoteIdx+1:]
				}
			}
		}

		sanitizedLines = append(sanitizedLines, line)
	}

	return strings.Join(sanitizedLines, "\n")
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength]) + "..."
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
