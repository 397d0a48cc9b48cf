package main

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"sales-dashboard-api/internal/facet"
	"sales-dashboard-api/internal/generator"
	"sales-dashboard-api/internal/models"
	"sales-dashboard-api/internal/services"
	"sales-dashboard-api/pkg/cache"
)

var (
	rateLimiters = make(map[string]*rate.Limiter)
	rateMutex    = &sync.RWMutex{}
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8085"
	}

	seed := envInt64("DATASET_SEED", 1234)
	size := envInt("DATASET_SIZE", 350)
	delay := time.Duration(envInt("QUERY_DELAY_MS", 300)) * time.Millisecond
	debounce := time.Duration(envInt("SEARCH_DEBOUNCE_MS", 400)) * time.Millisecond

	dataset := generator.Generate(size, seed)
	logger.Info("dataset generated",
		zap.Int("records", len(dataset)),
		zap.Int64("seed", seed),
	)

	redisCache := cache.NewRedisCache(logger)
	salesService := services.NewSalesService(dataset, redisCache, delay, logger)

	r := gin.Default()

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Add request ID middleware
	r.Use(func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("took", time.Since(start)),
			zap.Int("status", c.Writer.Status()),
		)
	})

	// Add rate limiting middleware
	r.Use(rateLimitMiddleware())

	// Health check with cache status
	r.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "healthy",
			"service": "sales-dashboard-api",
			"version": "1.0.0",
			"records": salesService.DatasetSize(),
		}

		if redisCache.IsAvailable() {
			health["cache"] = "redis connected"
		} else {
			health["cache"] = "redis unavailable"
		}

		c.JSON(http.StatusOK, health)
	})

	// Rate limit status endpoint
	r.GET("/rate-limit/status", func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := getRateLimiter(ip)

		c.JSON(http.StatusOK, gin.H{
			"ip":               ip,
			"limit_per_second": limiter.Limit(),
			"burst_capacity":   limiter.Burst(),
			"tokens_available": limiter.Tokens(),
		})
	})

	// Cache stats endpoint
	r.GET("/cache/stats", func(c *gin.Context) {
		if !redisCache.IsAvailable() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "cache not available",
			})
			return
		}

		c.JSON(http.StatusOK, redisCache.GetStats())
	})

	// Cache debug endpoint
	r.GET("/cache/debug", func(c *gin.Context) {
		if !redisCache.IsAvailable() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "cache not available",
			})
			return
		}

		keys := redisCache.GetAllKeys()

		keyDetails := make([]gin.H, 0, len(keys))
		for _, key := range keys {
			ttl := redisCache.GetKeyTTL(key)
			keyDetails = append(keyDetails, gin.H{
				"key":         key,
				"ttl_seconds": int(ttl.Seconds()),
				"expires_in":  ttl.String(),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"total_keys":  len(keys),
			"cache_keys":  keyDetails,
			"cache_stats": redisCache.GetStats(),
		})
	})

	// Cache flush endpoint (for testing)
	r.DELETE("/cache/flush", func(c *gin.Context) {
		if !redisCache.IsAvailable() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "cache not available",
			})
			return
		}

		if err := redisCache.FlushCache(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to flush cache",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":   "cache flushed successfully",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Sales query endpoint
	r.GET("/sales", func(c *gin.Context) {
		req, err := parseQueryRequest(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_argument",
				Code:    http.StatusBadRequest,
				Message: err.Error(),
			})
			return
		}

		result, err := salesService.GetSales(c.Request.Context(), req)
		if err != nil {
			logger.Warn("sales query failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "query_failed",
				Code:    http.StatusBadRequest,
				Message: err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, result)
	})

	// Facet endpoint: distinct values for a field across the full dataset
	r.GET("/sales/facets", func(c *gin.Context) {
		field := c.Query("field")
		values, err := salesService.GetUniqueValues(field)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_argument",
				Code:    http.StatusBadRequest,
				Message: err.Error(),
				Details: "supported fields: " + strings.Join(facet.Fields(), ", "),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"field":  field,
			"count":  len(values),
			"values": values,
		})
	})

	// Interactive query stream: debounced search, immediate filter/sort/page
	// changes, latest-token-wins delivery
	r.GET("/ws/sales", salesStreamHandler(salesService, debounce, logger))

	// API info endpoint
	r.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Sales Dashboard API",
			"version":     "1.0.0",
			"description": "API for browsing a synthetic sales dataset with search, filters, sorting and pagination",
			"features":    []string{"Free-text search", "Faceted filtering", "Sorting", "Pagination", "Redis caching", "Live query stream"},
			"endpoints": map[string]string{
				"GET /sales":        "Query sales with search, filters, sorting and pagination",
				"GET /sales/facets": "Distinct values for a field",
				"GET /ws/sales":     "WebSocket query stream",
				"GET /health":       "Health check",
				"GET /cache/stats":  "Cache statistics",
				"GET /api/info":     "API information",
			},
		})
	})

	logger.Info("starting server", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

// parseQueryRequest builds a QueryRequest from query parameters. Multi-value
// filters are comma-separated lists; dates accept RFC3339 or plain
// YYYY-MM-DD. A malformed date bound is an invalid argument.
func parseQueryRequest(c *gin.Context) (models.QueryRequest, error) {
	req := models.QueryRequest{
		SearchQuery: c.Query("q"),
		Filters:     models.DefaultFilterState(),
		Sort:        models.DefaultSortConfig(),
		Page:        1,
		PageSize:    10,
	}

	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil {
			req.Page = pageNum
		}
	}

	if l := c.Query("page_size"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil {
			req.PageSize = limitNum
		}
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	// Parse filters
	if regions := c.Query("regions"); regions != "" {
		req.Filters.Regions = splitList(regions)
	}
	if genders := c.Query("genders"); genders != "" {
		req.Filters.Genders = splitList(genders)
	}
	if categories := c.Query("categories"); categories != "" {
		req.Filters.Categories = splitList(categories)
	}
	if methods := c.Query("payment_methods"); methods != "" {
		req.Filters.PaymentMethods = splitList(methods)
	}

	if ageMin := c.Query("age_min"); ageMin != "" {
		if v, err := strconv.Atoi(ageMin); err == nil {
			req.Filters.AgeRange[0] = v
		}
	}
	if ageMax := c.Query("age_max"); ageMax != "" {
		if v, err := strconv.Atoi(ageMax); err == nil {
			req.Filters.AgeRange[1] = v
		}
	}

	if start := c.Query("date_start"); start != "" {
		t, err := parseDate(start)
		if err != nil {
			return req, err
		}
		req.Filters.DateRange.Start = &t
	}
	if end := c.Query("date_end"); end != "" {
		t, err := parseDate(end)
		if err != nil {
			return req, err
		}
		req.Filters.DateRange.End = &t
	}

	// Parse sort
	if sortField := c.Query("sort"); sortField != "" {
		req.Sort = models.SortConfig{
			Field:     models.SortField(sortField),
			Direction: models.SortAsc, // default
		}
		if sortOrder := c.Query("order"); sortOrder != "" {
			req.Sort.Direction = models.SortDirection(sortOrder)
		}
	}

	return req, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(name string, fallback int64) int64 {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getRateLimiter(ip string) *rate.Limiter {
	rateMutex.RLock()
	limiter, exists := rateLimiters[ip]
	rateMutex.RUnlock()

	if !exists {
		rateMutex.Lock()
		limiter = rate.NewLimiter(rate.Limit(10), 20) // 10 req/sec, burst 20
		rateLimiters[ip] = limiter
		rateMutex.Unlock()
	}

	return limiter
}

func rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := getRateLimiter(ip)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests from your IP",
				"retry_after": "1 second",
				"ip":          ip,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
