package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hexsmith/hexsmith/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrCourseNotFound is returned when the referenced course does not exist.
// A malformed course id is treated the same way.
var ErrCourseNotFound = errors.New("course not found")

// CourseRepository defines the interface for course data operations
type CourseRepository interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourseByID(ctx context.Context, id string) (*models.Course, error)
	GetCoursesByOwner(ctx context.Context, ownerID uint) ([]models.Course, error)
	GetTitlesByOwner(ctx context.Context, ownerID uint) ([]string, error)
	GetCommunityCourses(ctx context.Context, viewerID uint, excludeIDs []primitive.ObjectID, excludeTitles []string, limit int64) ([]models.Course, error)
	SetChapterCompletion(ctx context.Context, id string, chapterIndex int, completed bool) error
	DeleteCourse(ctx context.Context, id string) error
}

// MongoCourseRepository implements CourseRepository for MongoDB
type MongoCourseRepository struct {
	collection *mongo.Collection
}

// NewMongoCourseRepository creates a new MongoCourseRepository
func NewMongoCourseRepository(db *mongo.Database) *MongoCourseRepository {
	return &MongoCourseRepository{collection: db.Collection("courses")}
}

// CreateCourse creates a new course in MongoDB
func (r *MongoCourseRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	course.ID = primitive.NewObjectID()
	course.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, course)
	return err
}

// GetCourseByID retrieves a course by ID from MongoDB
func (r *MongoCourseRepository) GetCourseByID(ctx context.Context, id string) (*models.Course, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCourseNotFound
	}

	var course models.Course
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&course)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// GetCoursesByOwner retrieves the courses owned by a user, newest first
func (r *MongoCourseRepository) GetCoursesByOwner(ctx context.Context, ownerID uint) ([]models.Course, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"created_by": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err = cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetTitlesByOwner returns the titles of all courses owned by a user
func (r *MongoCourseRepository) GetTitlesByOwner(ctx context.Context, ownerID uint) ([]string, error) {
	findOptions := options.Find().SetProjection(bson.M{"title": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"created_by": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Title string `bson:"title"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	titles := make([]string, len(docs))
	for i, d := range docs {
		titles[i] = d.Title
	}
	return titles, nil
}

// GetCommunityCourses retrieves courses that are candidates for sharing into
// the viewer's library: not owned by the viewer, not already requested, and
// not matching the title of a course the viewer owns. Newest first, capped.
func (r *MongoCourseRepository) GetCommunityCourses(ctx context.Context, viewerID uint, excludeIDs []primitive.ObjectID, excludeTitles []string, limit int64) ([]models.Course, error) {
	filter := bson.M{
		"created_by": bson.M{"$ne": viewerID},
	}
	if len(excludeIDs) > 0 {
		filter["_id"] = bson.M{"$nin": excludeIDs}
	}
	if len(excludeTitles) > 0 {
		filter["title"] = bson.M{"$nin": excludeTitles}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err = cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// SetChapterCompletion sets the completion flag of a single chapter
func (r *MongoCourseRepository) SetChapterCompletion(ctx context.Context, id string, chapterIndex int, completed bool) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCourseNotFound
	}

	update := bson.M{"$set": bson.M{fmt.Sprintf("chapters.%d.is_completed", chapterIndex): completed}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// DeleteCourse deletes a course by ID from MongoDB
func (r *MongoCourseRepository) DeleteCourse(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCourseNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrCourseNotFound
	}
	return nil
}
