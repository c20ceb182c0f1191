package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/repositories"
	"go.uber.org/zap"
)

// Display colors for the dashboard status breakdowns.
var (
	userStatusColors = map[string]string{
		models.UserStatusActive: "#22c55e",
		models.UserStatusNew:    "#3b82f6",
		models.UserStatusBanned: "#ef4444",
	}
	recipeStatusColors = map[string]string{
		models.RecipeStatusPublished: "#22c55e",
		models.RecipeStatusPending:   "#f59e0b",
		models.RecipeStatusRejected:  "#ef4444",
	}
)

const topCategoriesLimit = 10

// AnalyticsService computes the admin dashboard aggregation.
type AnalyticsService struct {
	users    repositories.UserRepository
	recipes  repositories.RecipeRepository
	comments repositories.CommentRepository
	ratings  repositories.RatingRepository
	log      *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(users repositories.UserRepository, recipes repositories.RecipeRepository, comments repositories.CommentRepository, ratings repositories.RatingRepository, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		users:    users,
		recipes:  recipes,
		comments: comments,
		ratings:  ratings,
		log:      log,
		now:      time.Now,
	}
}

// RangeDays maps a range selector to its day count. Unknown selectors fall
// back to the 7-day default; an empty selector is the default too.
func RangeDays(rangeStr string) int {
	switch rangeStr {
	case "30d":
		return 30
	case "90d":
		return 90
	default:
		return 7
	}
}

// Dashboard computes the full aggregation payload for the given range
// selector. Any underlying read failure aborts the whole aggregation; partial
// results are never returned.
func (s *AnalyticsService) Dashboard(ctx context.Context, rangeStr string) (*models.AnalyticsDashboard, error) {
	days := RangeDays(rangeStr)
	now := s.now()
	periodStart := now.AddDate(0, 0, -days)
	previousStart := now.AddDate(0, 0, -2*days)

	overview, err := s.overview(ctx)
	if err != nil {
		return nil, err
	}

	growth, err := s.growth(ctx, periodStart, previousStart, now, overview)
	if err != nil {
		return nil, err
	}

	series, err := s.dailySeries(ctx, periodStart, days)
	if err != nil {
		return nil, err
	}

	categories, err := s.topCategories(ctx)
	if err != nil {
		return nil, err
	}

	userStatus, err := s.statusBreakdown(func(status string) (int64, error) {
		return s.users.CountByStatus(status)
	}, []string{models.UserStatusActive, models.UserStatusNew, models.UserStatusBanned}, userStatusColors)
	if err != nil {
		return nil, err
	}

	recipeStatus, err := s.statusBreakdown(func(status string) (int64, error) {
		return s.recipes.CountByStatus(ctx, status)
	}, []string{models.RecipeStatusPublished, models.RecipeStatusPending, models.RecipeStatusRejected}, recipeStatusColors)
	if err != nil {
		return nil, err
	}

	return &models.AnalyticsDashboard{
		Range:         fmt.Sprintf("%dd", days),
		Overview:      *overview,
		Growth:        *growth,
		DailySeries:   series,
		TopCategories: categories,
		UserStatus:    userStatus,
		RecipeStatus:  recipeStatus,
	}, nil
}

func (s *AnalyticsService) overview(ctx context.Context) (*models.AnalyticsOverview, error) {
	totalUsers, err := s.users.Count()
	if err != nil {
		return nil, err
	}
	totalRecipes, err := s.recipes.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalComments, err := s.comments.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalRatings, err := s.ratings.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalViews, err := s.recipes.SumViews(ctx)
	if err != nil {
		return nil, err
	}
	totalLikes, err := s.recipes.SumLikes(ctx)
	if err != nil {
		return nil, err
	}
	avgRating, err := s.ratings.Average(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.recipes.CountByStatus(ctx, models.RecipeStatusPending)
	if err != nil {
		return nil, err
	}
	flaggedRecipes, err := s.recipes.CountFlagged(ctx)
	if err != nil {
		return nil, err
	}
	flaggedComments, err := s.comments.CountFlagged(ctx)
	if err != nil {
		return nil, err
	}

	return &models.AnalyticsOverview{
		TotalUsers:        totalUsers,
		TotalRecipes:      totalRecipes,
		TotalComments:     totalComments,
		TotalRatings:      totalRatings,
		TotalViews:        totalViews,
		TotalLikes:        totalLikes,
		AverageRating:     round1(avgRating),
		PendingModeration: pending,
		FlaggedContent:    flaggedRecipes + flaggedComments,
	}, nil
}

func (s *AnalyticsService) growth(ctx context.Context, periodStart, previousStart, now time.Time, overview *models.AnalyticsOverview) (*models.AnalyticsGrowth, error) {
	currentUsers, err := s.users.CountCreatedBetween(periodStart, now)
	if err != nil {
		return nil, err
	}
	previousUsers, err := s.users.CountCreatedBetween(previousStart, periodStart)
	if err != nil {
		return nil, err
	}
	currentRecipes, err := s.recipes.CountCreatedBetween(ctx, periodStart, now)
	if err != nil {
		return nil, err
	}
	previousRecipes, err := s.recipes.CountCreatedBetween(ctx, previousStart, periodStart)
	if err != nil {
		return nil, err
	}
	currentComments, err := s.comments.CountCreatedBetween(ctx, periodStart, now)
	if err != nil {
		return nil, err
	}
	previousComments, err := s.comments.CountCreatedBetween(ctx, previousStart, periodStart)
	if err != nil {
		return nil, err
	}

	// Per-day view deltas are not tracked, so period views are estimated from
	// the recipe count and the all-time average views per recipe.
	var viewsPerRecipe float64
	if overview.TotalRecipes > 0 {
		viewsPerRecipe = float64(overview.TotalViews) / float64(overview.TotalRecipes)
	}
	currentViews := float64(currentRecipes) * viewsPerRecipe
	previousViews := float64(previousRecipes) * viewsPerRecipe

	return &models.AnalyticsGrowth{
		Users:    GrowthPercent(float64(currentUsers), float64(previousUsers)),
		Recipes:  GrowthPercent(float64(currentRecipes), float64(previousRecipes)),
		Comments: GrowthPercent(float64(currentComments), float64(previousComments)),
		Views:    GrowthPercent(currentViews, previousViews),
	}, nil
}

// GrowthPercent is the percentage change between periods, rounded to one
// decimal. With no previous activity it reports 100 when the current period
// has any, and 0 when both are empty.
func GrowthPercent(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round1((current - previous) / previous * 100)
}

func (s *AnalyticsService) dailySeries(ctx context.Context, from time.Time, days int) ([]models.DailyPoint, error) {
	// The series holds whole days only, so the query window is snapped to
	// midnight boundaries and the current partial day is left out.
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := start.AddDate(0, 0, days)

	usersPerDay, err := s.users.CountCreatedPerDay(start, end)
	if err != nil {
		return nil, err
	}
	recipesPerDay, err := s.recipes.CountCreatedPerDay(ctx, start, end)
	if err != nil {
		return nil, err
	}

	series := make([]models.DailyPoint, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, models.DailyPoint{
			Date:       date,
			NewUsers:   usersPerDay[date],
			NewRecipes: recipesPerDay[date],
			Views:      0, // not tracked per day; non-authoritative placeholder
		})
	}
	return series, nil
}

func (s *AnalyticsService) topCategories(ctx context.Context) ([]models.CategoryStat, error) {
	tags, err := s.recipes.TagFrequency(ctx, topCategoriesLimit)
	if err != nil {
		return nil, err
	}
	tagged, err := s.recipes.CountTagged(ctx)
	if err != nil {
		return nil, err
	}

	categories := make([]models.CategoryStat, 0, len(tags))
	for _, tc := range tags {
		var pct float64
		if tagged > 0 {
			pct = round1(float64(tc.Count) / float64(tagged) * 100)
		}
		categories = append(categories, models.CategoryStat{
			Tag:        tc.Tag,
			Count:      tc.Count,
			Percentage: pct,
		})
	}
	return categories, nil
}

func (s *AnalyticsService) statusBreakdown(count func(status string) (int64, error), statuses []string, colors map[string]string) ([]models.StatusSlice, error) {
	slices := make([]models.StatusSlice, 0, len(statuses))
	for _, status := range statuses {
		c, err := count(status)
		if err != nil {
			return nil, err
		}
		slices = append(slices, models.StatusSlice{Status: status, Count: c, Color: colors[status]})
	}
	return slices, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
