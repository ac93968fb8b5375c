package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/hexsmith/hexsmith/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type communityFixture struct {
	handler     *CommunityHandler
	courses     *fakeCourseRepo
	notifs      *fakeNotificationRepo
	users       *fakeUserRepo
	alice       *models.User
	bob         *models.User
	aliceCourse *models.Course
}

// setupCommunity seeds Alice owning a course with its first chapter completed
func setupCommunity(t *testing.T) *communityFixture {
	t.Helper()

	alice := &models.User{ID: 1, Name: "Alice", Email: "alice@example.com"}
	bob := &models.User{ID: 2, Name: "Bob", Email: "bob@example.com"}

	courses := newFakeCourseRepo()
	notifs := newFakeNotificationRepo()
	users := newFakeUserRepo(alice, bob)

	course := &models.Course{
		Title:       "Intro to X",
		Description: "All about X",
		ImageURL:    "https://img.example/x.png",
		Icon:        "fa-solid fa-folder",
		Difficulty:  "Beginner",
		Duration:    "2 Hours",
		CreatedBy:   alice.ID,
		Chapters: []models.Chapter{
			{ChapterTitle: "Basics", IsCompleted: true, Subtopics: []models.Subtopic{
				{Title: "What is X", Explanation: "<p>X</p>", YoutubeQuery: "x basics",
					Videos: []models.Video{{Title: "X in 10 min", URL: "https://youtu.be/x"}}},
			}},
			{ChapterTitle: "Advanced", IsCompleted: false},
		},
	}
	require.NoError(t, courses.CreateCourse(context.Background(), course))

	return &communityFixture{
		handler:     NewCommunityHandler(courses, notifs, users),
		courses:     courses,
		notifs:      notifs,
		users:       users,
		alice:       alice,
		bob:         bob,
		aliceCourse: course,
	}
}

func (f *communityFixture) requestAsBob(t *testing.T) *models.Notification {
	t.Helper()
	c, rec := newTestContext(http.MethodPost, "/api/v1/request-course",
		models.RequestCourseRequest{CourseID: f.aliceCourse.ID.Hex()}, f.bob.ID)
	require.NoError(t, f.handler.RequestCourse(c))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, n := range f.notifs.notifications {
		if n.Type == models.NotificationTypeRequest {
			return n
		}
	}
	t.Fatal("no request notification created")
	return nil
}

func (f *communityFixture) act(notifID string, action string, actor uint) (int, string, error) {
	c, rec := newTestContext(http.MethodPost, "/api/v1/notifications/"+notifID+"/action",
		models.NotificationActionRequest{Action: action}, actor)
	c.SetParamNames("id")
	c.SetParamValues(notifID)
	err := f.handler.HandleNotificationAction(c)
	if err != nil {
		return httpError(err).Code, "", err
	}
	return rec.Code, rec.Body.String(), nil
}

func TestRequestCourseIsIdempotent(t *testing.T) {
	f := setupCommunity(t)

	f.requestAsBob(t)
	assert.Equal(t, 1, f.notifs.count())

	// A retry while the first request is pending must not create a second row
	c, rec := newTestContext(http.MethodPost, "/api/v1/request-course",
		models.RequestCourseRequest{CourseID: f.aliceCourse.ID.Hex()}, f.bob.ID)
	require.NoError(t, f.handler.RequestCourse(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request already pending")
	assert.Equal(t, 1, f.notifs.count())
}

func TestRequestOwnCourseFails(t *testing.T) {
	f := setupCommunity(t)

	c, _ := newTestContext(http.MethodPost, "/api/v1/request-course",
		models.RequestCourseRequest{CourseID: f.aliceCourse.ID.Hex()}, f.alice.ID)
	err := f.handler.RequestCourse(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpError(err).Code)
	assert.Equal(t, 0, f.notifs.count())
}

func TestRequestMissingCourse(t *testing.T) {
	f := setupCommunity(t)

	c, _ := newTestContext(http.MethodPost, "/api/v1/request-course",
		models.RequestCourseRequest{CourseID: "64f000000000000000000000"}, f.bob.ID)
	err := f.handler.RequestCourse(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httpError(err).Code)
}

func TestAcceptCopiesCourseAndResetsProgress(t *testing.T) {
	f := setupCommunity(t)
	req := f.requestAsBob(t)

	code, body, err := f.act(req.ID.Hex(), models.ActionAccept, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Accepted")

	// Bob received a full copy with every chapter reset to incomplete
	bobCourses, _ := f.courses.GetCoursesByOwner(context.Background(), f.bob.ID)
	require.Len(t, bobCourses, 1)
	copied := bobCourses[0]
	assert.Equal(t, "Intro to X", copied.Title)
	assert.Equal(t, f.aliceCourse.Description, copied.Description)
	assert.NotEqual(t, f.aliceCourse.ID, copied.ID)
	for _, ch := range copied.Chapters {
		assert.False(t, ch.IsCompleted)
	}
	// Subtopic content travels unchanged
	require.Len(t, copied.Chapters[0].Subtopics, 1)
	assert.Equal(t, "What is X", copied.Chapters[0].Subtopics[0].Title)
	assert.Len(t, copied.Chapters[0].Subtopics[0].Videos, 1)

	// The sharer's own progress is untouched
	original, _ := f.courses.GetCourseByID(context.Background(), f.aliceCourse.ID.Hex())
	assert.True(t, original.Chapters[0].IsCompleted)

	// Request resolved, kept as suppression history, and Bob got the result
	stored, _ := f.notifs.GetNotificationByID(context.Background(), req.ID.Hex())
	assert.Equal(t, models.StatusAccepted, stored.Status)

	infos := f.notifs.infosFor(f.bob.ID)
	require.Len(t, infos, 1)
	assert.Equal(t, models.StatusUnread, infos[0].Status)
	assert.Contains(t, infos[0].Message, "Intro to X")
}

func TestAcceptResolvedRequestFails(t *testing.T) {
	f := setupCommunity(t)
	req := f.requestAsBob(t)

	code, _, err := f.act(req.ID.Hex(), models.ActionAccept, f.alice.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)

	// A second accept hits a resolved request and must not mint another copy
	code, _, err = f.act(req.ID.Hex(), models.ActionAccept, f.alice.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, code)

	bobCourses, _ := f.courses.GetCoursesByOwner(context.Background(), f.bob.ID)
	assert.Len(t, bobCourses, 1)
}

func TestRejectKeepsSuppressionRecord(t *testing.T) {
	f := setupCommunity(t)
	req := f.requestAsBob(t)

	code, _, err := f.act(req.ID.Hex(), models.ActionReject, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)

	// No copy is made on rejection
	bobCourses, _ := f.courses.GetCoursesByOwner(context.Background(), f.bob.ID)
	assert.Empty(t, bobCourses)

	stored, _ := f.notifs.GetNotificationByID(context.Background(), req.ID.Hex())
	assert.Equal(t, models.StatusRejected, stored.Status)

	infos := f.notifs.infosFor(f.bob.ID)
	require.Len(t, infos, 1)
	assert.Contains(t, infos[0].Message, "declined")
	assert.Contains(t, infos[0].Message, "Intro to X")
}

func TestDismissDeletesInfoOnce(t *testing.T) {
	f := setupCommunity(t)
	req := f.requestAsBob(t)
	_, _, err := f.act(req.ID.Hex(), models.ActionReject, f.alice.ID)
	require.NoError(t, err)

	info := f.notifs.infosFor(f.bob.ID)[0]

	code, _, err := f.act(info.ID.Hex(), models.ActionDismiss, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, f.notifs.infosFor(f.bob.ID))

	// Dismissing again is a clean not-found, not a crash
	code, _, err = f.act(info.ID.Hex(), models.ActionDismiss, f.bob.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestActionTypeMismatch(t *testing.T) {
	f := setupCommunity(t)
	req := f.requestAsBob(t)

	// dismiss is only valid on info notifications
	code, _, err := f.act(req.ID.Hex(), models.ActionDismiss, f.alice.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, code)

	// accept/reject are only valid on pending requests
	_, _, err = f.act(req.ID.Hex(), models.ActionReject, f.alice.ID)
	require.NoError(t, err)
	info := f.notifs.infosFor(f.bob.ID)[0]

	code, _, err = f.act(info.ID.Hex(), models.ActionAccept, f.bob.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestActionRequiresRecipient(t *testing.T) {
	f := setupCommunity(t)
	req := f.requestAsBob(t)

	// Bob sent the request; only Alice may resolve it
	code, _, err := f.act(req.ID.Hex(), models.ActionAccept, f.bob.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestCommunityListingExclusions(t *testing.T) {
	f := setupCommunity(t)
	ctx := context.Background()

	// Another course from Alice that Bob has already requested
	requested := &models.Course{Title: "Queues", CreatedBy: f.alice.ID}
	require.NoError(t, f.courses.CreateCourse(ctx, requested))
	require.NoError(t, f.notifs.CreateNotification(ctx, &models.Notification{
		Sender: f.bob.ID, Recipient: f.alice.ID, Course: requested.ID,
		Type: models.NotificationTypeRequest, Status: models.StatusPending,
	}))

	// A course whose title collides with one Bob owns
	require.NoError(t, f.courses.CreateCourse(ctx, &models.Course{Title: "Graphs", CreatedBy: f.alice.ID}))
	require.NoError(t, f.courses.CreateCourse(ctx, &models.Course{Title: "Graphs", CreatedBy: f.bob.ID}))

	c, rec := newTestContext(http.MethodGet, "/api/v1/community", nil, f.bob.ID)
	require.NoError(t, f.handler.GetCommunityCourses(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []models.CourseSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))

	require.Len(t, listed, 1)
	assert.Equal(t, "Intro to X", listed[0].Title)
	assert.Equal(t, "Alice", listed[0].Owner.Name)
}

func TestInboxSurfacesOnlyActionable(t *testing.T) {
	f := setupCommunity(t)
	req := f.requestAsBob(t)

	// Alice sees the incoming pending request, enriched
	c, rec := newTestContext(http.MethodGet, "/api/v1/notifications", nil, f.alice.ID)
	require.NoError(t, f.handler.GetNotifications(c))
	var inbox []models.EnrichedNotification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inbox))
	require.Len(t, inbox, 1)
	assert.Equal(t, "Bob", inbox[0].SenderName)
	assert.Equal(t, "Intro to X", inbox[0].CourseTitle)

	// After rejection the resolved request disappears from Alice's inbox
	_, _, err := f.act(req.ID.Hex(), models.ActionReject, f.alice.ID)
	require.NoError(t, err)

	c, rec = newTestContext(http.MethodGet, "/api/v1/notifications", nil, f.alice.ID)
	require.NoError(t, f.handler.GetNotifications(c))
	inbox = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inbox))
	assert.Empty(t, inbox)

	// while Bob sees the unread result
	c, rec = newTestContext(http.MethodGet, "/api/v1/notifications", nil, f.bob.ID)
	require.NoError(t, f.handler.GetNotifications(c))
	inbox = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inbox))
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationTypeInfo, inbox[0].Type)
}
