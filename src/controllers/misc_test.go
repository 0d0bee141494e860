package controllers

import (
	"ddtours/src/middlewares"
	"ddtours/src/types"
	"net/http"
	"strings"
	"time"
)

func (s *ControllersSuite) TestBlogs() {
	content := strings.Repeat("a", 150)
	blog, status, err := s.c.Blogs.Create(s.ctx, &types.CreateBlogRequestBody{
		Title:   "Winter Treks of Uttarakhand",
		Content: content,
		Image:   "https://cdn.test/blog.jpg",
	})
	s.Require().NoError(err)
	s.Equal(http.StatusCreated, status)
	s.Equal("winter-treks-of-uttarakhand", blog.Slug)
	s.Equal(strings.Repeat("a", 100)+"...", blog.Excerpt)
	s.Equal("General", blog.Category)
	s.Equal("5 min", blog.ReadTime)
	s.Equal("Command HQ", blog.Author)

	second, _, err := s.c.Blogs.Create(s.ctx, &types.CreateBlogRequestBody{Title: "Packing list", Image: "x", Author: "Ravi", Excerpt: "short"})
	s.Require().NoError(err)
	s.Equal("short", second.Excerpt)
	s.Equal("Ravi", second.Author)

	blogs, _, err := s.c.Blogs.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(blogs, 2)
	s.Equal(second.ID, blogs[0].ID)

	_, status, err = s.c.Blogs.Get(s.ctx, "missing")
	s.Equal(http.StatusNotFound, status)
	s.EqualError(err, "Report not found.")

	status, err = s.c.Blogs.Delete(s.ctx, blog.ID)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	_, status, _ = s.c.Blogs.Get(s.ctx, blog.ID)
	s.Equal(http.StatusNotFound, status)

	_, status, _ = s.c.Blogs.Create(s.ctx, &types.CreateBlogRequestBody{Title: "No image"})
	s.Equal(http.StatusBadRequest, status)
}

func (s *ControllersSuite) TestProfile() {
	profile, status, err := s.c.Users.Profile(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Equal("alice", profile.ID)
	s.False(profile.IsProfileComplete)

	profile, _, err = s.c.Users.UpdateProfile(s.ctx, s.alice, &types.UpdateProfileRequestBody{Phone: "98100", DOB: "1990-01-01"})
	s.Require().NoError(err)
	s.True(profile.IsProfileComplete)
	s.Equal("98100", profile.Phone)
	s.Equal("alice", profile.ID)

	_, status, _ = s.c.Users.Profile(s.ctx, nil)
	s.Equal(http.StatusUnauthorized, status)
}

func (s *ControllersSuite) TestUserDirectory() {
	page, _, err := s.c.Users.List(s.ctx, &types.ListUsersQuery{Limit: 1})
	s.Require().NoError(err)
	s.Len(page.Users, 1)
	s.Equal("next", page.NextPageToken)

	page, _, err = s.c.Users.List(s.ctx, &types.ListUsersQuery{})
	s.Require().NoError(err)
	s.Len(page.Users, 2)

	status, err := s.c.Users.Delete(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Equal([]string{"u1"}, s.users.deleted)

	status, _ = s.c.Users.Delete(s.ctx, "missing")
	s.Equal(http.StatusNotFound, status)
}

func (s *ControllersSuite) TestAdminLogin() {
	// tokens are checked against the wall clock
	admin := &AdminController{deps: Deps{Config: s.cfg, Now: time.Now}}
	session, status, err := admin.Login(s.ctx, &types.AdminLoginRequestBody{Email: "OPS@ddtours.in", Password: "summit"})
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Equal("Admin Access Granted", session.Message)
	s.Equal("ops@ddtours.in", session.AdminEmail)

	actor, err := middlewares.NewAdminTokenVerifier(s.cfg.JWTSecret).Verify(s.ctx, session.Token)
	s.Require().NoError(err)
	s.True(actor.IsAdmin())

	_, status, _ = admin.Login(s.ctx, &types.AdminLoginRequestBody{Email: "ops@ddtours.in", Password: "wrong"})
	s.Equal(http.StatusUnauthorized, status)
	_, status, _ = admin.Login(s.ctx, &types.AdminLoginRequestBody{Email: "someone@ddtours.in", Password: "summit"})
	s.Equal(http.StatusUnauthorized, status)
}
