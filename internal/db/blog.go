package db

import "time"

// Blog 定义了博客文章模型
// Slug 由标题在写入时派生，是前台查找文章的公开键。
type Blog struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `gorm:"type:text" json:"content"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug"`
	Category      string    `gorm:"index" json:"category"`
	Tags          []string  `gorm:"serializer:json" json:"tags"`
	FeaturedImage *string   `json:"featuredImage,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
