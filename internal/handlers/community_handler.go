package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/hexsmith/hexsmith/backend/internal/models"
	"github.com/hexsmith/hexsmith/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// communityPageSize caps the community listing
const communityPageSize = 20

// CommunityHandler orchestrates cross-user course sharing: the community
// listing, request submission, the notification inbox and the
// accept/reject/dismiss state machine
type CommunityHandler struct {
	courseRepository       repositories.CourseRepository
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewCommunityHandler creates a new CommunityHandler
func NewCommunityHandler(courseRepo repositories.CourseRepository, notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *CommunityHandler {
	return &CommunityHandler{
		courseRepository:       courseRepo,
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterCommunityRoutes registers community and notification routes
func (h *CommunityHandler) RegisterCommunityRoutes(g *echo.Group) {
	g.GET("/community", h.GetCommunityCourses)
	g.POST("/request-course", h.RequestCourse)
	g.GET("/notifications", h.GetNotifications)
	g.POST("/notifications/:id/action", h.HandleNotificationAction)
}

// GetCommunityCourses lists courses the viewer could request a copy of.
// Excluded: the viewer's own courses, courses with an outstanding pending or
// accepted request from the viewer, and courses whose title matches one the
// viewer already owns (copies are hidden by title, not content).
func (h *CommunityHandler) GetCommunityCourses(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	ctx := c.Request().Context()

	excludeIDs, err := h.notificationRepository.GetRequestedCourseIDs(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Fetch failed")
	}

	excludeTitles, err := h.courseRepository.GetTitlesByOwner(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Fetch failed")
	}

	courses, err := h.courseRepository.GetCommunityCourses(ctx, currentUserID, excludeIDs, excludeTitles, communityPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Fetch failed")
	}

	summaries := make([]models.CourseSummary, len(courses))
	ownerCache := make(map[uint]models.UserCompact)
	for i, course := range courses {
		summaries[i] = models.CourseSummary{Course: course}
		if owner, ok := ownerCache[course.CreatedBy]; ok {
			summaries[i].Owner = owner
			continue
		}
		user, err := h.userRepository.GetUserByID(course.CreatedBy)
		if err == nil {
			compact := user.ToCompact()
			ownerCache[course.CreatedBy] = compact
			summaries[i].Owner = compact
		}
	}

	return c.JSON(http.StatusOK, summaries)
}

// RequestCourse submits a sharing request for a community course. A repeat
// request while one is still pending is acknowledged without creating a
// second notification.
func (h *CommunityHandler) RequestCourse(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.RequestCourseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	course, err := h.courseRepository.GetCourseByID(ctx, req.CourseID)
	if err != nil {
		if err == repositories.ErrCourseNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Course not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Request failed")
	}

	if course.CreatedBy == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "You already own this course")
	}

	exists, err := h.notificationRepository.HasPendingRequest(ctx, currentUserID, course.CreatedBy, course.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Request failed")
	}
	if exists {
		return c.JSON(http.StatusOK, echo.Map{"message": "Request already pending"})
	}

	notification := &models.Notification{
		Sender:    currentUserID,
		Recipient: course.CreatedBy,
		Course:    course.ID,
		Type:      models.NotificationTypeRequest,
		Status:    models.StatusPending,
	}
	if err := h.notificationRepository.CreateNotification(ctx, notification); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Request failed")
	}

	log.Info().Uint("requester", currentUserID).Uint("owner", course.CreatedBy).
		Str("course", course.ID.Hex()).Msg("course request submitted")

	return c.JSON(http.StatusOK, echo.Map{"message": "Request sent successfully!"})
}

// GetNotifications returns the recipient's actionable notifications: pending
// incoming requests plus unread results of their own requests, enriched with
// the sender's name and the course title.
func (h *CommunityHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	ctx := c.Request().Context()

	notifications, err := h.notificationRepository.GetInbox(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notifications")
	}

	enriched := make([]models.EnrichedNotification, len(notifications))
	senderCache := make(map[uint]string)
	titleCache := make(map[string]string)
	for i, n := range notifications {
		enriched[i] = models.EnrichedNotification{Notification: n}

		if name, ok := senderCache[n.Sender]; ok {
			enriched[i].SenderName = name
		} else if user, err := h.userRepository.GetUserByID(n.Sender); err == nil {
			senderCache[n.Sender] = user.Name
			enriched[i].SenderName = user.Name
		}

		courseID := n.Course.Hex()
		if title, ok := titleCache[courseID]; ok {
			enriched[i].CourseTitle = title
		} else if course, err := h.courseRepository.GetCourseByID(ctx, courseID); err == nil {
			titleCache[courseID] = course.Title
			enriched[i].CourseTitle = course.Title
		}
	}

	return c.JSON(http.StatusOK, enriched)
}

// HandleNotificationAction runs the notification state machine:
//
//	info/unread     + dismiss -> delete
//	request/pending + reject  -> rejected, info message to the requester
//	request/pending + accept  -> copy course with progress reset, accepted,
//	                             info message to the requester
func (h *CommunityHandler) HandleNotificationAction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.NotificationActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	notification, err := h.notificationRepository.GetNotificationByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotificationNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Action failed")
	}

	if notification.Recipient != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to act on this notification")
	}

	switch req.Action {
	case models.ActionDismiss:
		return h.dismissNotification(c, notification)
	case models.ActionReject:
		return h.rejectRequest(c, notification)
	case models.ActionAccept:
		return h.acceptRequest(c, notification)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid action")
	}
}

// dismissNotification deletes a read info message
func (h *CommunityHandler) dismissNotification(c echo.Context, notification *models.Notification) error {
	if notification.Type != models.NotificationTypeInfo {
		return echo.NewHTTPError(http.StatusBadRequest, "Only info notifications can be dismissed")
	}

	if err := h.notificationRepository.DeleteNotification(c.Request().Context(), notification.ID.Hex()); err != nil {
		if err == repositories.ErrNotificationNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Action failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification cleared"})
}

// rejectRequest resolves a pending request as rejected and informs the
// requester. The rejected record is kept as suppression history.
func (h *CommunityHandler) rejectRequest(c echo.Context, notification *models.Notification) error {
	if notification.Type != models.NotificationTypeRequest || notification.Status != models.StatusPending {
		return echo.NewHTTPError(http.StatusBadRequest, "Only pending requests can be rejected")
	}
	ctx := c.Request().Context()

	updated, err := h.notificationRepository.UpdateStatusIfPending(ctx, notification.ID, models.StatusRejected)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Action failed")
	}
	if !updated {
		// Lost the race against a concurrent accept/reject on the same request
		return echo.NewHTTPError(http.StatusBadRequest, "Request already resolved")
	}

	title := h.courseTitle(c, notification)
	info := &models.Notification{
		Sender:    getUserIDFromContext(c),
		Recipient: notification.Sender,
		Course:    notification.Course,
		Type:      models.NotificationTypeInfo,
		Status:    models.StatusUnread,
		Message:   fmt.Sprintf("Your request for %q was declined.", title),
	}
	if err := h.notificationRepository.CreateNotification(ctx, info); err != nil {
		log.Error().Err(err).Msg("failed to deliver rejection notice")
		return echo.NewHTTPError(http.StatusInternalServerError, "Action failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Request Rejected"})
}

// acceptRequest copies the course for the requester with all chapter progress
// reset, resolves the request as accepted and informs the requester.
//
// Write order matters: the copy is persisted before the status flip so a
// crash in between leaves the request pending and safely retryable, never
// accepted without the copied course. If the compare-and-swap then loses to
// a concurrent actor, the orphan copy is removed again.
func (h *CommunityHandler) acceptRequest(c echo.Context, notification *models.Notification) error {
	if notification.Type != models.NotificationTypeRequest || notification.Status != models.StatusPending {
		return echo.NewHTTPError(http.StatusBadRequest, "Only pending requests can be accepted")
	}
	ctx := c.Request().Context()

	original, err := h.courseRepository.GetCourseByID(ctx, notification.Course.Hex())
	if err != nil {
		if err == repositories.ErrCourseNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Course not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Action failed")
	}

	// The recipient always starts at 0%, whatever progress the sharer had
	freshChapters := make([]models.Chapter, len(original.Chapters))
	for i, ch := range original.Chapters {
		freshChapters[i] = models.Chapter{
			ChapterTitle: ch.ChapterTitle,
			IsCompleted:  false,
			Subtopics:    ch.Subtopics,
		}
	}

	copied := &models.Course{
		Title:       original.Title,
		Description: original.Description,
		ImageURL:    original.ImageURL,
		Icon:        original.Icon,
		Difficulty:  original.Difficulty,
		Duration:    original.Duration,
		Chapters:    freshChapters,
		CreatedBy:   notification.Sender,
	}
	if err := h.courseRepository.CreateCourse(ctx, copied); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Action failed")
	}

	updated, err := h.notificationRepository.UpdateStatusIfPending(ctx, notification.ID, models.StatusAccepted)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Action failed")
	}
	if !updated {
		if delErr := h.courseRepository.DeleteCourse(ctx, copied.ID.Hex()); delErr != nil {
			log.Error().Err(delErr).Str("course", copied.ID.Hex()).Msg("failed to remove orphan course copy")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Request already resolved")
	}

	info := &models.Notification{
		Sender:    getUserIDFromContext(c),
		Recipient: notification.Sender,
		Course:    notification.Course,
		Type:      models.NotificationTypeInfo,
		Status:    models.StatusUnread,
		Message:   fmt.Sprintf("Congrats! Your request for %q is accepted.", original.Title),
	}
	if err := h.notificationRepository.CreateNotification(ctx, info); err != nil {
		log.Error().Err(err).Msg("failed to deliver acceptance notice")
		return echo.NewHTTPError(http.StatusInternalServerError, "Action failed")
	}

	log.Info().Uint("owner", getUserIDFromContext(c)).Uint("requester", notification.Sender).
		Str("course", notification.Course.Hex()).Msg("course request accepted")

	return c.JSON(http.StatusOK, echo.Map{"message": "Request Accepted & User Notified!"})
}

// courseTitle resolves the course title for notification messages, falling
// back to a generic label when the course has been deleted meanwhile
func (h *CommunityHandler) courseTitle(c echo.Context, notification *models.Notification) string {
	course, err := h.courseRepository.GetCourseByID(c.Request().Context(), notification.Course.Hex())
	if err != nil {
		return "this course"
	}
	return course.Title
}
