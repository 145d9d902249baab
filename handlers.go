package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"readre/models"
)

func setupRoutes(r *gin.Engine) {
	r.GET("/healthz", healthzHandler)
	r.GET("/tags", tagsHandler)

	r.POST("/auth/google", googleAuthHandler)
	r.POST("/auth/refresh", refreshHandler)
	r.POST("/auth/logout", logoutHandler)

	r.GET("/blogs", listBlogsHandler)
	r.GET("/blogs/:slug", getBlogHandler)

	authGroup := r.Group("")
	authGroup.Use(authMiddleware())
	authGroup.GET("/auth/me", meHandler)
	authGroup.POST("/blogs", createBlogHandler)
	authGroup.GET("/user/blogs", listUserBlogsHandler)
	authGroup.PUT("/blogs/:slug", updateBlogHandler)
	authGroup.DELETE("/blogs/:slug", deleteBlogHandler)
	authGroup.POST("/blogs/:slug/comments", createCommentHandler)
	authGroup.GET("/blogs/:slug/comments", listCommentsHandler)
	authGroup.PUT("/blogs/:slug/comments/:id", updateCommentHandler)
	authGroup.DELETE("/blogs/:slug/comments/:id", deleteCommentHandler)
	authGroup.POST("/blogs/:slug/like", likeBlogHandler)
	authGroup.GET("/blogs/:slug/like", blogLikeStatusHandler)
	authGroup.POST("/blogs/:slug/comments/:id/like", likeCommentHandler)
}

func healthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func tagsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.BlogTags)
}

// commentView is the comment shape embedded in blog and comment responses,
// with the author's picture and like state joined in.
type commentView struct {
	ID            uint      `json:"id"`
	Text          string    `json:"text"`
	DateAdded     time.Time `json:"date_added"`
	UserID        uint      `json:"user_id"`
	BlogID        uint      `json:"blog_id"`
	Author        string    `json:"author"`
	AuthorPicture string    `json:"author_picture"`
	Liked         bool      `json:"liked"`
	LikesCount    int64     `json:"likes_count"`
}

func buildCommentView(comment models.Comment, viewer *models.User) commentView {
	view := commentView{
		ID:        comment.ID,
		Text:      comment.Text,
		DateAdded: comment.CreatedAt,
		UserID:    comment.UserID,
		BlogID:    comment.BlogID,
		Author:    comment.Author,
	}
	var author models.User
	if err := db.First(&author, comment.UserID).Error; err == nil {
		if view.Author == "" {
			view.Author = author.Username
		}
		if author.Picture != nil {
			view.AuthorPicture = *author.Picture
		}
	} else if view.Author == "" {
		view.Author = "Unknown"
	}
	db.Model(&models.Like{}).Where("comment_id = ?", comment.ID).Count(&view.LikesCount)
	if viewer != nil {
		var n int64
		db.Model(&models.Like{}).Where("comment_id = ? AND user_id = ?", comment.ID, viewer.ID).Count(&n)
		view.Liked = n > 0
	}
	return view
}

func findBlogBySlug(c *gin.Context) (*models.Blog, bool) {
	var blog models.Blog
	if err := db.Where("slug = ?", c.Param("slug")).First(&blog).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "blog not found"})
		return nil, false
	}
	return &blog, true
}

type blogRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
	ReadingTime int    `json:"reading_time"`
	MembersOnly bool   `json:"members_only"`
	Image       string `json:"image"`
}

func createBlogHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	blog := models.Blog{
		UserID:      user.ID,
		Slug:        slug.Make(req.Title),
		Title:       req.Title,
		Description: req.Description,
		Tag:         req.Tag,
		ReadingTime: req.ReadingTime,
		MembersOnly: req.MembersOnly,
		Image:       req.Image,
	}
	var existing models.Blog
	if err := db.Where("slug = ? OR title = ?", blog.Slug, blog.Title).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "a blog with this title already exists"})
		return
	}
	if err := db.Create(&blog).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, blog)
}

func listBlogsHandler(c *gin.Context) {
	var blogs []models.Blog
	if err := db.Order("id desc").Find(&blogs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, blogs)
}

// getBlogHandler returns a single blog with its comments and like count.
// Public route: viewer-specific fields (liked) stay false when anonymous.
func getBlogHandler(c *gin.Context) {
	blog, ok := findBlogBySlug(c)
	if !ok {
		return
	}
	var comments []models.Comment
	if err := db.Where("blog_id = ?", blog.ID).Order("id asc").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	views := make([]commentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, buildCommentView(comment, nil))
	}
	var likesCount int64
	db.Model(&models.Like{}).Where("blog_id = ?", blog.ID).Count(&likesCount)

	c.JSON(http.StatusOK, gin.H{
		"id":                blog.ID,
		"slug":              blog.Slug,
		"date_added":        blog.CreatedAt,
		"date_last_updated": blog.UpdatedAt,
		"title":             blog.Title,
		"description":       blog.Description,
		"tag":               blog.Tag,
		"reading_time":      blog.ReadingTime,
		"members_only":      blog.MembersOnly,
		"image":             blog.Image,
		"comments":          views,
		"likes_count":       likesCount,
	})
}

// listUserBlogsHandler lists blogs created by the current user.
func listUserBlogsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var blogs []models.Blog
	if err := db.Where("user_id = ?", user.ID).Order("id desc").Find(&blogs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, blogs)
}

func updateBlogHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	blog, ok := findBlogBySlug(c)
	if !ok {
		return
	}
	if blog.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to edit this blog"})
		return
	}
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	blog.Description = req.Description
	blog.Tag = req.Tag
	blog.ReadingTime = req.ReadingTime
	blog.MembersOnly = req.MembersOnly
	blog.Image = req.Image
	if req.Title != blog.Title {
		blog.Title = req.Title
		blog.Slug = slug.Make(req.Title)
	}
	if err := db.Save(blog).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, blog)
}

func deleteBlogHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	blog, ok := findBlogBySlug(c)
	if !ok {
		return
	}
	if blog.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to delete this blog"})
		return
	}
	if err := db.Delete(blog).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func createCommentHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	blog, ok := findBlogBySlug(c)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	author := user.Username
	if author == "" {
		author = user.Name
	}
	comment := models.Comment{
		UserID: user.ID,
		BlogID: blog.ID,
		Author: author,
		Text:   req.Text,
	}
	if err := db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, buildCommentView(comment, user))
}

func listCommentsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	blog, ok := findBlogBySlug(c)
	if !ok {
		return
	}
	var comments []models.Comment
	if err := db.Where("blog_id = ?", blog.ID).Order("id asc").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	views := make([]commentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, buildCommentView(comment, user))
	}
	c.JSON(http.StatusOK, views)
}

// findComment loads the comment with the :id param, scoped to the blog.
func findComment(c *gin.Context, blog *models.Blog) (*models.Comment, bool) {
	var comment models.Comment
	if err := db.Where("id = ? AND blog_id = ?", c.Param("id"), blog.ID).First(&comment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return nil, false
	}
	return &comment, true
}

func updateCommentHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	blog, ok := findBlogBySlug(c)
	if !ok {
		return
	}
	comment, ok := findComment(c, blog)
	if !ok {
		return
	}
	if comment.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to edit this comment"})
		return
	}
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment.Text = req.Text
	if err := db.Save(comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, buildCommentView(*comment, user))
}

func deleteCommentHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	blog, ok := findBlogBySlug(c)
	if !ok {
		return
	}
	comment, ok := findComment(c, blog)
	if !ok {
		return
	}
	if comment.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to delete this comment"})
		return
	}
	if err := db.Delete(comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// likeBlogHandler toggles the current user's like on a blog.
func likeBlogHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	blog, ok := findBlogBySlug(c)
	if !ok {
		return
	}
	var like models.Like
	liked := false
	if err := db.Where("user_id = ? AND blog_id = ?", user.ID, blog.ID).First(&like).Error; err == nil {
		db.Delete(&like)
	} else {
		newLike := models.Like{UserID: user.ID, BlogID: &blog.ID}
		if err := db.Create(&newLike).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "like failed"})
			return
		}
		liked = true
	}
	var likesCount int64
	db.Model(&models.Like{}).Where("blog_id = ?", blog.ID).Count(&likesCount)
	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes_count": likesCount})
}

func blogLikeStatusHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	blog, ok := findBlogBySlug(c)
	if !ok {
		return
	}
	var n int64
	db.Model(&models.Like{}).Where("user_id = ? AND blog_id = ?", user.ID, blog.ID).Count(&n)
	var likesCount int64
	db.Model(&models.Like{}).Where("blog_id = ?", blog.ID).Count(&likesCount)
	c.JSON(http.StatusOK, gin.H{"liked": n > 0, "likes_count": likesCount})
}

// likeCommentHandler toggles the current user's like on a comment.
func likeCommentHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	blog, ok := findBlogBySlug(c)
	if !ok {
		return
	}
	comment, ok := findComment(c, blog)
	if !ok {
		return
	}
	var like models.Like
	liked := false
	if err := db.Where("user_id = ? AND comment_id = ?", user.ID, comment.ID).First(&like).Error; err == nil {
		db.Delete(&like)
	} else {
		newLike := models.Like{UserID: user.ID, CommentID: &comment.ID}
		if err := db.Create(&newLike).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "like failed"})
			return
		}
		liked = true
	}
	var likesCount int64
	db.Model(&models.Like{}).Where("comment_id = ?", comment.ID).Count(&likesCount)
	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes_count": likesCount})
}
