package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/db"
	"github.com/portfolio/internal/service"
)

// tagList accepts either a JSON array or a comma separated string.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = strings.Split(raw, ",")
	return nil
}

type blogRequest struct {
	Title         *string  `json:"title"`
	Excerpt       *string  `json:"excerpt"`
	Content       *string  `json:"content"`
	Category      *string  `json:"category"`
	Tags          *tagList `json:"tags"`
	FeaturedImage *string  `json:"featuredImage"`
}

func (r blogRequest) toInput() service.BlogInput {
	input := service.BlogInput{FeaturedImage: r.FeaturedImage}
	if r.Title != nil {
		input.Title = *r.Title
	}
	if r.Excerpt != nil {
		input.Excerpt = *r.Excerpt
	}
	if r.Content != nil {
		input.Content = *r.Content
	}
	if r.Category != nil {
		input.Category = *r.Category
	}
	if r.Tags != nil {
		input.Tags = []string(*r.Tags)
	}
	return input
}

func (r blogRequest) toPatch() service.BlogPatch {
	patch := service.BlogPatch{
		Title:         r.Title,
		Excerpt:       r.Excerpt,
		Content:       r.Content,
		Category:      r.Category,
		FeaturedImage: r.FeaturedImage,
	}
	if r.Tags != nil {
		tags := []string(*r.Tags)
		patch.Tags = &tags
	}
	return patch
}

type blogView struct {
	db.Blog
	ContentHTML string `json:"contentHtml"`
}

// ListBlogs 返回博客列表，支持分类、标签和关键词过滤
func (a *API) ListBlogs(c *gin.Context) {
	blogs, err := a.blogs.List(service.BlogFilter{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Search:   c.Query("q"),
		Limit:    parseIntQuery(c, "limit"),
	})
	if err != nil {
		respondServerError(c, "blog", err)
		return
	}
	c.JSON(http.StatusOK, blogs)
}

// ListCategories 返回分类及其文章数
func (a *API) ListCategories(c *gin.Context) {
	categories, err := a.blogs.Categories()
	if err != nil {
		respondServerError(c, "blog", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetBlog 按 ID 获取博客
func (a *API) GetBlog(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid blog id")
		return
	}
	blog, err := a.blogs.Get(id)
	a.respondBlog(c, http.StatusOK, blog, err)
}

// GetBlogBySlug 按 slug 获取博客
func (a *API) GetBlogBySlug(c *gin.Context) {
	blog, err := a.blogs.GetBySlug(c.Param("slug"))
	a.respondBlog(c, http.StatusOK, blog, err)
}

// CreateBlog 创建博客
func (a *API) CreateBlog(c *gin.Context) {
	var req blogRequest
	if !bindJSON(c, &req, "Invalid blog payload") {
		return
	}
	blog, err := a.blogs.Create(req.toInput())
	a.respondBlog(c, http.StatusCreated, blog, err)
}

// UpdateBlog 按 ID 更新博客，未提供的字段保持不变
func (a *API) UpdateBlog(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid blog id")
		return
	}
	var req blogRequest
	if !bindJSON(c, &req, "Invalid blog payload") {
		return
	}
	blog, err := a.blogs.Update(id, req.toPatch())
	a.respondBlog(c, http.StatusOK, blog, err)
}

// UpdateBlogBySlug 按 slug 更新博客
func (a *API) UpdateBlogBySlug(c *gin.Context) {
	var req blogRequest
	if !bindJSON(c, &req, "Invalid blog payload") {
		return
	}
	blog, err := a.blogs.UpdateBySlug(c.Param("slug"), req.toPatch())
	a.respondBlog(c, http.StatusOK, blog, err)
}

// DeleteBlog 按 ID 删除博客
func (a *API) DeleteBlog(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid blog id")
		return
	}
	a.respondBlogDeleted(c, a.blogs.Delete(id))
}

// DeleteBlogBySlug 按 slug 删除博客
func (a *API) DeleteBlogBySlug(c *gin.Context) {
	a.respondBlogDeleted(c, a.blogs.DeleteBySlug(c.Param("slug")))
}

func (a *API) respondBlog(c *gin.Context, status int, blog *db.Blog, err error) {
	if err != nil {
		handleBlogError(c, err)
		return
	}
	c.JSON(status, blogView{Blog: *blog, ContentHTML: a.renderer.Render(blog.Content)})
}

func (a *API) respondBlogDeleted(c *gin.Context, err error) {
	if err != nil {
		handleBlogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Blog deleted successfully"})
}

func handleBlogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBlogNotFound):
		respondError(c, http.StatusNotFound, "Blog not found")
	case errors.Is(err, service.ErrBlogTitleRequired),
		errors.Is(err, service.ErrBlogSlugInvalid),
		errors.Is(err, service.ErrBlogSlugTaken):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondServerError(c, "blog", err)
	}
}
