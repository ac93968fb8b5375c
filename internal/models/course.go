package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video is a suggested video attached to a subtopic
type Video struct {
	Title     string `json:"title" bson:"title"`
	Thumbnail string `json:"thumbnail" bson:"thumbnail"`
	URL       string `json:"url" bson:"url"`
	Duration  string `json:"duration" bson:"duration"`
}

// Subtopic holds the AI-expanded learning content for one topic of a chapter
type Subtopic struct {
	Title        string  `json:"title" bson:"title"`
	Explanation  string  `json:"explanation" bson:"explanation"`
	Code         string  `json:"code,omitempty" bson:"code,omitempty"`
	YoutubeQuery string  `json:"youtube_query,omitempty" bson:"youtube_query,omitempty"`
	Videos       []Video `json:"videos" bson:"videos"`
}

// Chapter is an ordered unit of a course with its own completion flag
type Chapter struct {
	ChapterTitle string     `json:"chapter_title" bson:"chapter_title"`
	IsCompleted  bool       `json:"is_completed" bson:"is_completed"`
	Subtopics    []Subtopic `json:"subtopics" bson:"subtopics"`
}

// Course is an owned content unit stored in MongoDB
type Course struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	ImageURL    string             `json:"image_url" bson:"image_url"`
	Icon        string             `json:"icon" bson:"icon"`
	Difficulty  string             `json:"difficulty" bson:"difficulty"`
	Duration    string             `json:"duration" bson:"duration"`
	Chapters    []Chapter          `json:"chapters" bson:"chapters"`
	CreatedBy   uint               `json:"created_by" bson:"created_by"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// CourseSummary is a community listing entry enriched with the owner's name
type CourseSummary struct {
	Course
	Owner UserCompact `json:"owner"`
}

// OutlineChapter pairs a chapter title with its plain topic list, before expansion
type OutlineChapter struct {
	ChapterTitle string   `json:"chapter_title" validate:"required"`
	Topics       []string `json:"topics" validate:"required,min=1"`
}

// CourseOutline is the approved skeleton the expansion step must follow verbatim
type CourseOutline struct {
	CourseTitle string           `json:"courseTitle" validate:"required"`
	Description string           `json:"description"`
	Difficulty  string           `json:"difficulty"`
	Duration    string           `json:"duration"`
	Chapters    []OutlineChapter `json:"chapters" validate:"required,min=1,dive"`
}

type GenerateCourseRequest struct {
	Topic   string         `json:"topic" validate:"required,min=2"`
	Outline *CourseOutline `json:"outline" validate:"required"`
}

type SuggestRequest struct {
	Topic string `json:"topic" validate:"required,min=2"`
}

type CreateOutlineRequest struct {
	Topic       string `json:"topic" validate:"required,min=2"`
	Chapters    int    `json:"chapters" validate:"omitempty,min=1,max=12"`
	TopicsArray string `json:"topicsArray,omitempty"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}
