package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig lists the response headers set on every API response.
// Empty values are not sent.
type SecurityConfig struct {
	HSTS                  bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	FrameOptions          string
	ContentTypeOptions    string
	ReferrerPolicy        string
	CacheControl          string
	ResourcePolicy        string
	CSPDirectives         []string
}

// DefaultSecurityConfig suits a JSON API that serves patient data: nothing
// is framed, cached or embedded cross-origin.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTS:                  true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeOptions:    "nosniff",
		ReferrerPolicy:        "no-referrer",
		CacheControl:          "no-store",
		ResourcePolicy:        "same-origin",
		CSPDirectives: []string{
			"default-src 'none'",
			"frame-ancestors 'none'",
		},
	}
}

func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	hsts := fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
	if config.HSTSIncludeSubdomains {
		hsts += "; includeSubDomains"
	}
	headers := map[string]string{
		"X-Frame-Options":              config.FrameOptions,
		"X-Content-Type-Options":       config.ContentTypeOptions,
		"Referrer-Policy":              config.ReferrerPolicy,
		"Cache-Control":                config.CacheControl,
		"Cross-Origin-Resource-Policy": config.ResourcePolicy,
		"Content-Security-Policy":      strings.Join(config.CSPDirectives, "; "),
	}

	return func(c *gin.Context) {
		// Browsers ignore HSTS on plain HTTP.
		if config.HSTS && secureRequest(c) {
			c.Header("Strict-Transport-Security", hsts)
		}
		for name, value := range headers {
			if value != "" {
				c.Header(name, value)
			}
		}
		c.Next()
	}
}

// secureRequest reports TLS directly or via a terminating proxy.
func secureRequest(c *gin.Context) bool {
	return c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
}
