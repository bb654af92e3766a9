package service

import "errors"

var (
	ErrNoProject     = errors.New("no active project")
	ErrRootNotExist  = errors.New("image root does not exist")
	ErrFileNotFound  = errors.New("file not found")
	ErrPathTraversal = errors.New("path escapes media root")
	ErrSaveFavorites = errors.New("failed to save favorites")
)
