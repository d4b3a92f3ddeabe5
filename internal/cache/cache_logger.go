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

// InvalidateCourseCache drops every cached view of one course's directory
// data (prerequisites, offerings, certificate overlaps).
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint) {
	SafeDelete(ctx, cm.Course,
		fmt.Sprintf("id:%d", courseID),
		fmt.Sprintf("prereqs:%d", courseID),
		fmt.Sprintf("offerings:%d", courseID),
		fmt.Sprintf("certs:%d", courseID))
}

// InvalidateProgramCache drops cached program metadata and credit totals.
func InvalidateProgramCache(ctx context.Context, cm *CacheManager, programID uint) {
	SafeDelete(ctx, cm.Program,
		fmt.Sprintf("id:%d", programID),
		fmt.Sprintf("credits:%d", programID))
	SafeInvalidatePattern(ctx, cm.Program, fmt.Sprintf("requirements:%d:*", programID))
}
