package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns in batch
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// Course keys: "list" (full catalog), "id:<id>" (detail), "teacher:<addr>" (teacher's courses)
// Enrollment keys: "course:<id>" (roster), "student:<addr>" (taken courses)

// InvalidateCourseCache drops the catalog, the course detail and the teacher listings
// touched by a course mutation
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint, teachers ...string) {
	keys := []string{"list", fmt.Sprintf("id:%d", courseID)}
	for _, teacher := range teachers {
		if teacher != "" {
			keys = append(keys, "teacher:"+teacher)
		}
	}
	SafeDelete(ctx, cm.Course, keys...)

	// Student course lists embed course records
	SafeInvalidatePattern(ctx, cm.Enrollment, "student:*")
}

// InvalidateEnrollmentCache drops the roster and the student's taken-course list
func InvalidateEnrollmentCache(ctx context.Context, cm *CacheManager, courseID uint, student string) {
	SafeDelete(ctx, cm.Enrollment,
		fmt.Sprintf("course:%d", courseID),
		"student:"+student)
}

// InvalidateUserCache drops a public user record
func InvalidateUserCache(ctx context.Context, cm *CacheManager, address string) {
	SafeDelete(ctx, cm.User, "address:"+address)
}
