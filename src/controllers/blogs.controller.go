package controllers

import (
	"context"
	"ddtours/src/db"
	"ddtours/src/models"
	"ddtours/src/types"
	"ddtours/src/utils"
	"errors"
	"log"
	"net/http"
	"strings"
)

const excerptLength = 100

type BlogsController struct {
	deps Deps
}

func (c *BlogsController) Create(ctx context.Context, body *types.CreateBlogRequestBody) (*models.Blog, int, error) {
	title := strings.TrimSpace(body.Title)
	if title == "" || body.Image == "" {
		return nil, http.StatusBadRequest, types.NewValidationError("Title and image are required")
	}
	blog := &models.Blog{
		Title:       title,
		Slug:        utils.Slugify(title),
		Excerpt:     body.Excerpt,
		Content:     body.Content,
		Image:       body.Image,
		Category:    body.Category,
		ReadTime:    body.ReadTime,
		Author:      body.Author,
		YoutubeURL:  body.YoutubeURL,
		FacebookURL: body.FacebookURL,
		CreatedAt:   c.deps.Now(),
	}
	if blog.Excerpt == "" {
		blog.Excerpt = utils.Excerpt(body.Content, excerptLength)
	}
	if blog.Category == "" {
		blog.Category = "General"
	}
	if blog.ReadTime == "" {
		blog.ReadTime = "5 min"
	}
	if blog.Author == "" {
		blog.Author = "Command HQ"
	}
	id, err := c.deps.Store.Create(ctx, types.COLLECTION_BLOGS, blog)
	if err != nil {
		log.Printf("[Blogs] Error saving blog: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	blog.SetID(id)
	return blog, http.StatusCreated, nil
}

func (c *BlogsController) List(ctx context.Context) ([]models.Blog, int, error) {
	blogs, err := db.FindAll[models.Blog](ctx, c.deps.Store, types.COLLECTION_BLOGS, db.Query{}.Newest("createdAt"))
	if err != nil {
		log.Printf("[Blogs] Error listing blogs: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return blogs, http.StatusOK, nil
}

func (c *BlogsController) Get(ctx context.Context, id string) (*models.Blog, int, error) {
	blog, err := db.GetByID[models.Blog](ctx, c.deps.Store, types.COLLECTION_BLOGS, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, http.StatusNotFound, errors.New("Report not found.")
		}
		log.Printf("[Blogs] Error fetching blog [%s]: %s\n", id, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return blog, http.StatusOK, nil
}

func (c *BlogsController) Delete(ctx context.Context, id string) (int, error) {
	if _, status, err := c.Get(ctx, id); err != nil {
		return status, err
	}
	if err := c.deps.Store.Delete(ctx, types.COLLECTION_BLOGS, id); err != nil {
		log.Printf("[Blogs] Error deleting blog [%s]: %s\n", id, err.Error())
		return http.StatusInternalServerError, err
	}
	return http.StatusOK, nil
}
