package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hexsmith/hexsmith/backend/internal/models"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// CourseSuggestion is one AI-proposed course idea for a topic
type CourseSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Chapters    int    `json:"chapters"`
	Difficulty  string `json:"difficulty"`
}

// GeneratedSubtopic is the AI-expanded content for a single outline topic
type GeneratedSubtopic struct {
	Title        string `json:"title"`
	Explanation  string `json:"explanation"`
	Code         string `json:"code,omitempty"`
	YoutubeQuery string `json:"youtube_query"`
}

// GeneratedChapter groups expanded subtopics under the outline's chapter title
type GeneratedChapter struct {
	ChapterTitle string              `json:"chapter_title"`
	Subtopics    []GeneratedSubtopic `json:"subtopics"`
}

// GeneratedCourse is the full AI expansion of an approved outline
type GeneratedCourse struct {
	CourseTitle string             `json:"courseTitle"`
	Description string             `json:"description"`
	ImagePrompt string             `json:"image_prompt"`
	Chapters    []GeneratedChapter `json:"chapters"`
}

// ContentGenerator produces AI-generated course material
type ContentGenerator interface {
	Chat(ctx context.Context, message string) (string, error)
	SuggestCourses(ctx context.Context, topic string) ([]CourseSuggestion, error)
	CreateOutline(ctx context.Context, topic string, chapters int, topicsArray string) (*models.CourseOutline, error)
	ExpandCourse(ctx context.Context, topic string, outline *models.CourseOutline) (*GeneratedCourse, error)
}

type geminiClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewGeminiClient creates a ContentGenerator backed by the Gemini REST API
func NewGeminiClient(apiKey, model string) ContentGenerator {
	return &geminiClient{
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: geminiBaseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

// NewGeminiClientWithBaseURL is used by tests to point the client at a stub server
func NewGeminiClientWithBaseURL(baseURL, apiKey, model string) ContentGenerator {
	c := NewGeminiClient(apiKey, model).(*geminiClient)
	c.baseURL = baseURL
	return c
}

type generateContentRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generate sends a single-turn prompt and returns the raw model text
func (g *geminiClient) generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("gemini API key not configured")
	}

	reqBody := generateContentRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	if jsonMode {
		reqBody.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode generation request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("invalid response from gemini: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error.Message != "" {
			return "", fmt.Errorf("gemini error: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("gemini error: HTTP %d", resp.StatusCode)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// Chat sends a free-form tutor message and returns the model reply
func (g *geminiClient) Chat(ctx context.Context, message string) (string, error) {
	return g.generate(ctx, message, false)
}

// SuggestCourses asks the model for 6-8 course ideas on a topic
func (g *geminiClient) SuggestCourses(ctx context.Context, topic string) ([]CourseSuggestion, error) {
	prompt := fmt.Sprintf(`
Generate 6-8 unique and catchy course titles and short descriptions based on the topic: '%s'.

CRITICAL INSTRUCTION:
- The 'chapters' count for each suggestion MUST be either 6 to 7.

Return ONLY valid JSON array.
Structure:
[
    { "title": "Course Title", "description": "Short desc", "chapters": 7, "difficulty": "Intermediate" }
]`, topic)

	text, err := g.generate(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	var suggestions []CourseSuggestion
	if err := json.Unmarshal([]byte(text), &suggestions); err != nil {
		return nil, fmt.Errorf("AI returned invalid JSON: %w", err)
	}
	return suggestions, nil
}

// CreateOutline asks the model for a clean chapter/topic outline
func (g *geminiClient) CreateOutline(ctx context.Context, topic string, chapters int, topicsArray string) (*models.CourseOutline, error) {
	if chapters == 0 {
		chapters = 5
	}

	customTopicsInstruction := ""
	if topicsArray != "" {
		customTopicsInstruction = fmt.Sprintf("\nCRITICAL INSTRUCTION: The user wants to specifically include these topics: %q. Please integrate them logically into the chapters.", topicsArray)
	}

	prompt := fmt.Sprintf(`
Create a structured course outline for '%s' with exactly %d chapters. %s

IMPORTANT RULES:
- Do NOT include any numbering in chapter titles.
- Do NOT include numbers, prefixes like "1.", "Chapter 1", "#1", etc.
- Do NOT number the topics.
- Titles and topics must be clean text only.
- Return ONLY valid JSON.

Structure:
{
    "courseTitle": "Catchy Course Title",
    "description": "Short description (max 20 words)",
    "difficulty": "Beginner/Intermediate/Advanced",
    "duration": "e.g. 2 Hours",
    "chapters": [
        {
            "chapter_title": "Chapter Title (no numbering)",
            "topics": ["Topic 1 (no numbering)", "Topic 2", "Topic 3", "Topic 4", "Topic 5"]
        }
    ]
}`, topic, chapters, customTopicsInstruction)

	text, err := g.generate(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	var outline models.CourseOutline
	if err := json.Unmarshal([]byte(text), &outline); err != nil {
		return nil, fmt.Errorf("AI returned invalid JSON: %w", err)
	}
	return &outline, nil
}

// ExpandCourse generates detailed subtopic content for an approved outline.
// The model must keep the outline's chapter and subtopic structure untouched.
func (g *geminiClient) ExpandCourse(ctx context.Context, topic string, outline *models.CourseOutline) (*GeneratedCourse, error) {
	structured, err := json.MarshalIndent(outline, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode outline: %w", err)
	}

	prompt := fmt.Sprintf(`
You are an expert AI Course Creator.

Target Topic: '%s'

IMPORTANT:
You MUST use the exact structure provided below.
Do NOT change chapter titles.
Do NOT add or remove chapters.
Do NOT add or remove subtopics.
Only generate detailed content for each subtopic.

Outline Structure:
%s

For EACH subtopic:
- Keep the same "title"
- Generate:
    - "explanation" (250-300 words, raw HTML using <p> and <strong>)
    - "code":
        * If topic is technical -> Provide clean code without comments.
        * If non-technical -> Return null.
    - "youtube_query"

Return ONLY valid JSON in this structure:

{
  "courseTitle": %q,
  "description": %q,
  "image_prompt": "short professional image prompt",
  "chapters": [
      {
          "chapter_title": "...",
          "subtopics": [
              {
                  "title": "...",
                  "explanation": "<p>...</p>",
                  "code": null OR "code",
                  "youtube_query": "..."
              }
          ]
      }
  ]
}`, topic, structured, outline.CourseTitle, outline.Description)

	text, err := g.generate(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	var course GeneratedCourse
	if err := json.Unmarshal([]byte(text), &course); err != nil {
		return nil, fmt.Errorf("AI returned invalid JSON: %w", err)
	}

	if len(course.Chapters) != len(outline.Chapters) {
		return nil, fmt.Errorf("AI structure mismatch: expected %d chapters, got %d", len(outline.Chapters), len(course.Chapters))
	}
	return &course, nil
}
