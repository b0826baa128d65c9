package service

import (
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanModifyBlog(t *testing.T) {
	author := &models.User{ID: 1, Role: models.RoleUser}
	admin := &models.User{ID: 2, Role: models.RoleAdmin}
	stranger := &models.User{ID: 3, Role: models.RoleUser}
	blog := &models.Blog{ID: 10, AuthorID: 1}

	assert.True(t, CanModifyBlog(author, blog), "author may modify their own blog")
	assert.True(t, CanModifyBlog(admin, blog), "admin may modify any blog")
	assert.False(t, CanModifyBlog(stranger, blog), "non-owner non-admin is rejected")
	assert.False(t, CanModifyBlog(nil, blog))
	assert.False(t, CanModifyBlog(author, nil))
}
