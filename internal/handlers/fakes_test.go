package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"

	"github.com/hexsmith/hexsmith/backend/internal/models"
	"github.com/hexsmith/hexsmith/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// fakeCourseRepo is an in-memory CourseRepository
type fakeCourseRepo struct {
	courses map[string]*models.Course
	seq     int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[string]*models.Course)}
}

func (r *fakeCourseRepo) CreateCourse(_ context.Context, course *models.Course) error {
	course.ID = primitive.NewObjectID()
	r.seq++
	course.CreatedAt = course.CreatedAt.AddDate(0, 0, r.seq) // strictly increasing
	stored := *course
	r.courses[course.ID.Hex()] = &stored
	return nil
}

func (r *fakeCourseRepo) GetCourseByID(_ context.Context, id string) (*models.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return nil, repositories.ErrCourseNotFound
	}
	copied := *course
	return &copied, nil
}

func (r *fakeCourseRepo) GetCoursesByOwner(_ context.Context, ownerID uint) ([]models.Course, error) {
	var out []models.Course
	for _, c := range r.courses {
		if c.CreatedBy == ownerID {
			out = append(out, *c)
		}
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (r *fakeCourseRepo) GetTitlesByOwner(_ context.Context, ownerID uint) ([]string, error) {
	var titles []string
	for _, c := range r.courses {
		if c.CreatedBy == ownerID {
			titles = append(titles, c.Title)
		}
	}
	return titles, nil
}

func (r *fakeCourseRepo) GetCommunityCourses(_ context.Context, viewerID uint, excludeIDs []primitive.ObjectID, excludeTitles []string, limit int64) ([]models.Course, error) {
	excludedID := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excludedID[id.Hex()] = true
	}
	excludedTitle := make(map[string]bool, len(excludeTitles))
	for _, t := range excludeTitles {
		excludedTitle[t] = true
	}

	var out []models.Course
	for _, c := range r.courses {
		if c.CreatedBy == viewerID || excludedID[c.ID.Hex()] || excludedTitle[c.Title] {
			continue
		}
		out = append(out, *c)
	}
	sortByCreatedDesc(out)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCourseRepo) SetChapterCompletion(_ context.Context, id string, chapterIndex int, completed bool) error {
	course, ok := r.courses[id]
	if !ok {
		return repositories.ErrCourseNotFound
	}
	course.Chapters[chapterIndex].IsCompleted = completed
	return nil
}

func (r *fakeCourseRepo) DeleteCourse(_ context.Context, id string) error {
	if _, ok := r.courses[id]; !ok {
		return repositories.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func sortByCreatedDesc(courses []models.Course) {
	sort.Slice(courses, func(i, j int) bool {
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})
}

// fakeNotificationRepo is an in-memory NotificationRepository
type fakeNotificationRepo struct {
	notifications map[string]*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[string]*models.Notification)}
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	stored := *n
	r.notifications[n.ID.Hex()] = &stored
	return nil
}

func (r *fakeNotificationRepo) GetNotificationByID(_ context.Context, id string) (*models.Notification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, repositories.ErrNotificationNotFound
	}
	copied := *n
	return &copied, nil
}

func (r *fakeNotificationRepo) HasPendingRequest(_ context.Context, sender, recipient uint, course primitive.ObjectID) (bool, error) {
	for _, n := range r.notifications {
		if n.Sender == sender && n.Recipient == recipient && n.Course == course &&
			n.Type == models.NotificationTypeRequest && n.Status == models.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) GetRequestedCourseIDs(_ context.Context, sender uint) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, n := range r.notifications {
		if n.Sender == sender && n.Type == models.NotificationTypeRequest &&
			(n.Status == models.StatusPending || n.Status == models.StatusAccepted) {
			ids = append(ids, n.Course)
		}
	}
	return ids, nil
}

func (r *fakeNotificationRepo) GetInbox(_ context.Context, recipient uint) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.notifications {
		if n.Recipient != recipient {
			continue
		}
		if (n.Type == models.NotificationTypeRequest && n.Status == models.StatusPending) ||
			(n.Type == models.NotificationTypeInfo && n.Status == models.StatusUnread) {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeNotificationRepo) UpdateStatusIfPending(_ context.Context, id primitive.ObjectID, status string) (bool, error) {
	n, ok := r.notifications[id.Hex()]
	if !ok || n.Type != models.NotificationTypeRequest || n.Status != models.StatusPending {
		return false, nil
	}
	n.Status = status
	return true, nil
}

func (r *fakeNotificationRepo) DeleteNotification(_ context.Context, id string) error {
	if _, ok := r.notifications[id]; !ok {
		return repositories.ErrNotificationNotFound
	}
	delete(r.notifications, id)
	return nil
}

func (r *fakeNotificationRepo) count() int {
	return len(r.notifications)
}

func (r *fakeNotificationRepo) infosFor(recipient uint) []*models.Notification {
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.Recipient == recipient && n.Type == models.NotificationTypeInfo {
			out = append(out, n)
		}
	}
	return out
}

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(user *models.User) error {
	user.ID = uint(len(r.users) + 1)
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetUserByGoogleID(googleID string) (*models.User, error) {
	for _, u := range r.users {
		if u.GoogleID == googleID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdateUser(user *models.User) error {
	r.users[user.ID] = user
	return nil
}

// newTestContext builds an echo context carrying the given user's claims
func newTestContext(method, path string, body interface{}, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()

	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c, rec
}

// httpError unwraps an echo.HTTPError, failing loudly when the error is not one
func httpError(err error) *echo.HTTPError {
	if he, ok := err.(*echo.HTTPError); ok {
		return he
	}
	return &echo.HTTPError{Code: -1, Message: err}
}
