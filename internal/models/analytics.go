package models

// Dashboard analytics payload returned to the admin UI.

// AnalyticsOverview holds the whole-platform counters.
type AnalyticsOverview struct {
	TotalUsers        int64   `json:"totalUsers"`
	TotalRecipes      int64   `json:"totalRecipes"`
	TotalComments     int64   `json:"totalComments"`
	TotalRatings      int64   `json:"totalRatings"`
	TotalViews        int64   `json:"totalViews"`
	TotalLikes        int64   `json:"totalLikes"`
	AverageRating     float64 `json:"averageRating"` // 0 when there are no ratings
	PendingModeration int64   `json:"pendingModeration"`
	FlaggedContent    int64   `json:"flaggedContent"`
}

// AnalyticsGrowth holds percentage change between the selected period and the
// immediately preceding period of equal length, rounded to one decimal.
type AnalyticsGrowth struct {
	Users    float64 `json:"users"`
	Recipes  float64 `json:"recipes"`
	Comments float64 `json:"comments"`
	Views    float64 `json:"views"` // estimated from average views per recipe, not measured
}

// DailyPoint is one day of the time series.
type DailyPoint struct {
	Date       string `json:"date"` // YYYY-MM-DD
	NewUsers   int64  `json:"newUsers"`
	NewRecipes int64  `json:"newRecipes"`
	Views      int64  `json:"views"` // placeholder, not tracked per day; always 0
}

// CategoryStat is one row of the top-tags breakdown.
type CategoryStat struct {
	Tag        string  `json:"tag"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"` // share of tagged recipes
}

// StatusSlice is one partition of a status breakdown, with its display color.
type StatusSlice struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Color  string `json:"color"`
}

// AnalyticsDashboard is the full aggregation payload for GET /admin/analytics.
type AnalyticsDashboard struct {
	Range         string            `json:"range"`
	Overview      AnalyticsOverview `json:"overview"`
	Growth        AnalyticsGrowth   `json:"growth"`
	DailySeries   []DailyPoint      `json:"dailySeries"`
	TopCategories []CategoryStat    `json:"topCategories"`
	UserStatus    []StatusSlice     `json:"userStatus"`
	RecipeStatus  []StatusSlice     `json:"recipeStatus"`
}
