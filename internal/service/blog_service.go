package service

import (
	"errors"
	"strings"
	"time"

	"github.com/portfolio/internal/db"
	"gorm.io/gorm"
)

var (
	ErrBlogNotFound      = errors.New("blog not found")
	ErrBlogTitleRequired = errors.New("blog title is required")
	ErrBlogSlugInvalid   = errors.New("blog title must contain letters or digits")
	ErrBlogSlugTaken     = errors.New("a blog with this title already exists")
)

// likeEscaper makes user search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// BlogService wraps blog related database operations.
type BlogService struct {
	db  *gorm.DB
	now func() time.Time
}

// BlogFilter describes filters for listing blogs.
type BlogFilter struct {
	Category string
	Tag      string
	Search   string
	Limit    int
}

// BlogInput represents fields accepted when creating a blog.
type BlogInput struct {
	Title         string
	Excerpt       string
	Content       string
	Category      string
	Tags          []string
	FeaturedImage *string
}

// BlogPatch carries a partial update; nil fields are left untouched.
type BlogPatch struct {
	Title         *string
	Excerpt       *string
	Content       *string
	Category      *string
	Tags          *[]string
	FeaturedImage *string
}

// CategoryCount is one entry of the public category index.
type CategoryCount struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int64  `json:"count"`
}

// NewBlogService creates a BlogService instance.
func NewBlogService(gdb *gorm.DB) *BlogService {
	return &BlogService{db: gdb, now: time.Now}
}

// List returns blogs newest first, narrowed by the filter.
func (s *BlogService) List(filter BlogFilter) ([]db.Blog, error) {
	query := s.db.Model(&db.Blog{})

	if category := strings.ToLower(strings.TrimSpace(filter.Category)); category != "" {
		query = query.Where("LOWER(blogs.category) = ?", category)
	}

	if tag := strings.ToLower(strings.TrimSpace(filter.Tag)); tag != "" {
		query = query.Where("EXISTS (SELECT 1 FROM json_each(blogs.tags) WHERE LOWER(json_each.value) = ?)", tag)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + likeEscaper.Replace(search) + "%"
		query = query.Where(`(blogs.title LIKE ? ESCAPE '\' OR blogs.excerpt LIKE ? ESCAPE '\' OR blogs.content LIKE ? ESCAPE '\')`, like, like, like)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	blogs := make([]db.Blog, 0)
	if err := query.Order("blogs.created_at desc, blogs.id desc").Find(&blogs).Error; err != nil {
		return nil, err
	}
	return blogs, nil
}

// Categories returns the distinct categories with their post counts.
func (s *BlogService) Categories() ([]CategoryCount, error) {
	var rows []struct {
		Name  string
		Count int64
	}
	if err := s.db.Model(&db.Blog{}).
		Select("MIN(category) AS name, COUNT(*) AS count").
		Where("TRIM(category) <> ''").
		Group("LOWER(category)").
		Order("count desc, name asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	categories := make([]CategoryCount, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, CategoryCount{
			Name:  row.Name,
			Slug:  strings.ToLower(strings.TrimSpace(row.Name)),
			Count: row.Count,
		})
	}
	return categories, nil
}

// Count returns the number of stored blogs.
func (s *BlogService) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&db.Blog{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Get fetches a blog by id.
func (s *BlogService) Get(id uint) (*db.Blog, error) {
	var blog db.Blog
	if err := s.db.First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	return &blog, nil
}

// GetBySlug fetches a blog by its public slug.
func (s *BlogService) GetBySlug(slug string) (*db.Blog, error) {
	var blog db.Blog
	if err := s.db.Where("slug = ?", strings.TrimSpace(slug)).First(&blog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	return &blog, nil
}

// Create persists a new blog, deriving its slug from the title.
func (s *BlogService) Create(input BlogInput) (*db.Blog, error) {
	title := strings.TrimSpace(input.Title)
	slug, err := s.slugFor(title, 0)
	if err != nil {
		return nil, err
	}

	now := s.now()
	blog := db.Blog{
		Title:         title,
		Excerpt:       strings.TrimSpace(input.Excerpt),
		Content:       input.Content,
		Slug:          slug,
		Category:      strings.TrimSpace(input.Category),
		Tags:          normalizeTags(input.Tags),
		FeaturedImage: normalizeOptional(input.FeaturedImage),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if blog.Excerpt == "" {
		blog.Excerpt = summarizeContent(blog.Content)
	}

	if err := s.db.Create(&blog).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBlogSlugTaken
		}
		return nil, err
	}
	return &blog, nil
}

// Update applies a partial update to the blog with the given id.
func (s *BlogService) Update(id uint, patch BlogPatch) (*db.Blog, error) {
	blog, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.applyPatch(blog, patch)
}

// UpdateBySlug applies a partial update to the blog with the given slug.
func (s *BlogService) UpdateBySlug(slug string, patch BlogPatch) (*db.Blog, error) {
	blog, err := s.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	return s.applyPatch(blog, patch)
}

// Delete removes a blog by id.
func (s *BlogService) Delete(id uint) error {
	result := s.db.Delete(&db.Blog{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBlogNotFound
	}
	return nil
}

// DeleteBySlug removes a blog by slug.
func (s *BlogService) DeleteBySlug(slug string) error {
	result := s.db.Where("slug = ?", strings.TrimSpace(slug)).Delete(&db.Blog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBlogNotFound
	}
	return nil
}

func (s *BlogService) applyPatch(blog *db.Blog, patch BlogPatch) (*db.Blog, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		slug, err := s.slugFor(title, blog.ID)
		if err != nil {
			return nil, err
		}
		blog.Title = title
		blog.Slug = slug
	}
	if patch.Content != nil {
		blog.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		blog.Excerpt = strings.TrimSpace(*patch.Excerpt)
	}
	if patch.Category != nil {
		blog.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Tags != nil {
		blog.Tags = normalizeTags(*patch.Tags)
	}
	if patch.FeaturedImage != nil {
		blog.FeaturedImage = normalizeOptional(patch.FeaturedImage)
	}
	if blog.Excerpt == "" {
		blog.Excerpt = summarizeContent(blog.Content)
	}
	blog.UpdatedAt = s.now()

	if err := s.db.Save(blog).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBlogSlugTaken
		}
		return nil, err
	}
	return blog, nil
}

// slugFor derives the slug for title and checks it is free for the post
// identified by selfID (0 for new posts).
func (s *BlogService) slugFor(title string, selfID uint) (string, error) {
	if title == "" {
		return "", ErrBlogTitleRequired
	}

	slug := Slugify(title)
	if slug == "" {
		return "", ErrBlogSlugInvalid
	}

	var owner db.Blog
	err := s.db.Select("id").Where("slug = ?", slug).First(&owner).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return slug, nil
	case err != nil:
		return "", err
	case owner.ID != selfID:
		return "", ErrBlogSlugTaken
	default:
		return slug, nil
	}
}

func normalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
