package service

import "inkwell/internal/models"

// CanModifyBlog reports whether the caller may edit or delete the blog.
// The author always can; admins can modify any blog.
func CanModifyBlog(caller *models.User, blog *models.Blog) bool {
	if caller == nil || blog == nil {
		return false
	}
	return caller.ID == blog.AuthorID || caller.IsAdmin()
}
