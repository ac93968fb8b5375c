package handlers

import (
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hexsmith/hexsmith/backend/internal/models"
	"github.com/hexsmith/hexsmith/backend/internal/repositories"
	"github.com/hexsmith/hexsmith/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const videosPerSubtopic = 2

// CourseHandler handles course CRUD, progress tracking and AI generation
type CourseHandler struct {
	courseRepository repositories.CourseRepository
	generator        services.ContentGenerator
	videoSearcher    services.VideoSearcher
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(courseRepo repositories.CourseRepository, generator services.ContentGenerator, videoSearcher services.VideoSearcher) *CourseHandler {
	return &CourseHandler{
		courseRepository: courseRepo,
		generator:        generator,
		videoSearcher:    videoSearcher,
	}
}

// RegisterCourseRoutes registers course routes
func (h *CourseHandler) RegisterCourseRoutes(g *echo.Group) {
	g.GET("/courses", h.GetCourses)
	g.GET("/courses/:id", h.GetCourseByID)
	g.DELETE("/courses/:id", h.DeleteCourse)
	g.PUT("/courses/:id/chapters/:chapterIndex/toggle", h.ToggleChapterProgress)
	g.POST("/suggest", h.GetSuggestions)
	g.POST("/create-outline", h.CreateOutline)
	g.POST("/generate-course", h.GenerateCourse)
}

// GetCourses returns the courses owned by the current user, newest first
func (h *CourseHandler) GetCourses(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	courses, err := h.courseRepository.GetCoursesByOwner(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch courses")
	}
	return c.JSON(http.StatusOK, courses)
}

// GetCourseByID returns a single course
func (h *CourseHandler) GetCourseByID(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	course, err := h.courseRepository.GetCourseByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrCourseNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Course not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch course")
	}
	return c.JSON(http.StatusOK, course)
}

// DeleteCourse deletes one of the current user's courses
func (h *CourseHandler) DeleteCourse(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	course, err := h.courseRepository.GetCourseByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrCourseNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Course not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Delete failed")
	}
	if course.CreatedBy != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this course")
	}

	if err := h.courseRepository.DeleteCourse(ctx, c.Param("id")); err != nil {
		if err == repositories.ErrCourseNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Course not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Delete failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Deleted successfully"})
}

// ToggleChapterProgress flips a chapter's completion flag
func (h *CourseHandler) ToggleChapterProgress(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	chapterIndex, err := strconv.Atoi(c.Param("chapterIndex"))
	if err != nil || chapterIndex < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid chapter index")
	}

	ctx := c.Request().Context()
	course, err := h.courseRepository.GetCourseByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrCourseNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Course not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Toggle failed")
	}
	if chapterIndex >= len(course.Chapters) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid chapter index")
	}

	newState := !course.Chapters[chapterIndex].IsCompleted
	if err := h.courseRepository.SetChapterCompletion(ctx, c.Param("id"), chapterIndex, newState); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Toggle failed")
	}

	course.Chapters[chapterIndex].IsCompleted = newState
	return c.JSON(http.StatusOK, course)
}

// GetSuggestions returns AI-proposed course ideas for a topic
func (h *CourseHandler) GetSuggestions(c echo.Context) error {
	var req models.SuggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	suggestions, err := h.generator.SuggestCourses(c.Request().Context(), req.Topic)
	if err != nil {
		log.Error().Err(err).Str("topic", req.Topic).Msg("suggestion generation failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Suggestion failed")
	}
	return c.JSON(http.StatusOK, suggestions)
}

// CreateOutline returns an AI-generated course outline for approval
func (h *CourseHandler) CreateOutline(c echo.Context) error {
	var req models.CreateOutlineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	log.Info().Str("topic", req.Topic).Int("chapters", req.Chapters).Msg("generating outline")

	outline, err := h.generator.CreateOutline(c.Request().Context(), req.Topic, req.Chapters, req.TopicsArray)
	if err != nil {
		log.Error().Err(err).Str("topic", req.Topic).Msg("outline generation failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create outline.")
	}
	return c.JSON(http.StatusOK, outline)
}

// GenerateCourse expands an approved outline into full chapter content,
// attaches video suggestions and a cover image, and persists the course
func (h *CourseHandler) GenerateCourse(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.GenerateCourseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Outline == nil || len(req.Outline.Chapters) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Outline missing.")
	}

	ctx := c.Request().Context()
	log.Info().Str("topic", req.Topic).Msg("generating course content")

	generated, err := h.generator.ExpandCourse(ctx, req.Topic, req.Outline)
	if err != nil {
		log.Error().Err(err).Str("topic", req.Topic).Msg("course generation failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Generation failed.")
	}

	chapters := h.buildChapters(c, generated)

	imagePrompt := generated.ImagePrompt
	if imagePrompt == "" {
		imagePrompt = req.Topic
	}

	difficulty := req.Outline.Difficulty
	if difficulty == "" {
		difficulty = "Beginner"
	}
	duration := req.Outline.Duration
	if duration == "" {
		duration = "Flexible"
	}

	course := &models.Course{
		Title:       generated.CourseTitle,
		Description: generated.Description,
		ImageURL:    courseImageURL(imagePrompt),
		Icon:        iconForTopic(req.Topic),
		Difficulty:  difficulty,
		Duration:    duration,
		Chapters:    chapters,
		CreatedBy:   currentUserID,
	}

	if err := h.courseRepository.CreateCourse(ctx, course); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Generation failed.")
	}
	return c.JSON(http.StatusOK, course)
}

// buildChapters converts generated content into stored chapters, fetching
// video suggestions for every subtopic in parallel. Lookup failures degrade
// to an empty video list rather than failing the generation.
func (h *CourseHandler) buildChapters(c echo.Context, generated *services.GeneratedCourse) []models.Chapter {
	ctx := c.Request().Context()

	chapters := make([]models.Chapter, len(generated.Chapters))
	var wg sync.WaitGroup
	for i, ch := range generated.Chapters {
		chapters[i] = models.Chapter{
			ChapterTitle: ch.ChapterTitle,
			IsCompleted:  false,
			Subtopics:    make([]models.Subtopic, len(ch.Subtopics)),
		}
		for j, st := range ch.Subtopics {
			chapters[i].Subtopics[j] = models.Subtopic{
				Title:        st.Title,
				Explanation:  st.Explanation,
				Code:         st.Code,
				YoutubeQuery: st.YoutubeQuery,
				Videos:       []models.Video{},
			}

			if h.videoSearcher == nil || st.YoutubeQuery == "" {
				continue
			}
			wg.Add(1)
			go func(i, j int, query string) {
				defer wg.Done()
				videos, err := h.videoSearcher.Search(ctx, query+" tutorial", videosPerSubtopic)
				if err != nil {
					log.Warn().Err(err).Str("query", query).Msg("video lookup failed")
					return
				}
				chapters[i].Subtopics[j].Videos = videos
			}(i, j, st.YoutubeQuery)
		}
	}
	wg.Wait()
	return chapters
}

// courseImageURL builds a deterministic-format cover image URL from the AI
// image prompt
func courseImageURL(prompt string) string {
	if len(prompt) > 100 {
		prompt = prompt[:100]
	}
	seed := rand.Intn(10000)
	return "https://image.pollinations.ai/prompt/" + url.QueryEscape(prompt) + "?nologin=true&seed=" + strconv.Itoa(seed)
}

// iconForTopic picks a font-awesome icon class from topic keywords
func iconForTopic(topic string) string {
	lower := strings.ToLower(topic)
	switch {
	case strings.Contains(lower, "js"), strings.Contains(lower, "react"), strings.Contains(lower, "node"):
		return "fa-brands fa-js"
	case strings.Contains(lower, "python"):
		return "fa-brands fa-python"
	case strings.Contains(lower, "java"):
		return "fa-brands fa-java"
	case strings.Contains(lower, "html"):
		return "fa-brands fa-html5"
	case strings.Contains(lower, "css"):
		return "fa-brands fa-css3-alt"
	case strings.Contains(lower, "law"), strings.Contains(lower, "legal"):
		return "fa-solid fa-scale-balanced"
	case strings.Contains(lower, "finance"), strings.Contains(lower, "money"):
		return "fa-solid fa-chart-line"
	default:
		return "fa-solid fa-folder"
	}
}
