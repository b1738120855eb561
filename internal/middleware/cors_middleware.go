package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"formcraft-backend-go/internal/config"
)

// Headers shared between the API and the browser client.
const (
	RequestIDHeader = "X-Request-Id"
	ReceiptHeader   = "X-Response-Receipt"
)

// CORSMiddleware configures Cross-Origin Resource Sharing (CORS) for the application.
// It allows requests from the CLIENT_URL specified in the application configuration
// (a comma-separated list is accepted) and the public form origin.
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	if appConfig == nil || appConfig.ClientURL == "" {
		// For safety, panic is better than a misconfigured permissive policy.
		panic("ClientURL for CORS is not configured")
	}

	origins := []string{}
	seen := map[string]bool{}
	for _, o := range append(strings.Split(appConfig.ClientURL, ","), appConfig.PublicBaseURL) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" && !seen[o] {
			seen[o] = true
			origins = append(origins, o)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		// "Authorization" carries the ID token; the receipt header carries limit-one-response receipts.
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", RequestIDHeader, ReceiptHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", RequestIDHeader, ReceiptHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
