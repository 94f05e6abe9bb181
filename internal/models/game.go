package models

import (
	"slices"
	"time"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

type UploadStatus string

const (
	UploadStatusUploading  UploadStatus = "uploading"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusReady      UploadStatus = "ready"
	UploadStatusFailed     UploadStatus = "failed"
)

var GameCategories = []string{
	"Action",
	"Puzzle",
	"Arcade",
	"Adventure",
	"Strategy",
	"Casual",
	"Racing",
	"Sports",
	"RPG",
	"Other",
}

var AgeRatings = []string{
	"Everyone",
	"Everyone 10+",
	"Teen",
	"Mature 17+",
	"Adults Only",
}

type Game struct {
	ID                   string
	CreatorID            string
	Title                string
	Description          string
	Category             string
	Version              string
	AgeRating            *string
	ReviewStatus         ReviewStatus
	UploadStatus         UploadStatus
	IsActive             bool
	PlayCount            int64
	DownloadCount        int64
	TotalPlayTimeSeconds int64
	FileSizeBytes        int64
	Bucket               string
	ObjectKey            string
	ThumbnailKey         string
	Checksum             []byte
	Signature            []byte
	CreatedAt            time.Time
	LastUpdatedAt        time.Time
}

type GameUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Version     *string
	AgeRating   *string
}

type GameFilter struct {
	Query        string
	ReviewStatus ReviewStatus
}

func IsGameCategory(s string) bool {
	return slices.Contains(GameCategories, s)
}

func IsAgeRating(s string) bool {
	return slices.Contains(AgeRatings, s)
}
