package cors

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultOrigins is the allow list used when none is configured.
var DefaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"https://*.vercel.app",
	"https://*.gohighlevel.com",
	"https://*.ngrok-free.app",
}

const (
	allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders = "Content-Type, Authorization"
)

// Policy decides which browser origins may read responses.
type Policy struct {
	exact    map[string]struct{}
	patterns []*regexp.Regexp
}

// NewPolicy compiles an allow list. An entry containing "*" is a pattern where each "*"
// matches one or more characters other than "/"; everything else matches literally.
func NewPolicy(origins []string) (*Policy, error) {
	p := &Policy{exact: map[string]struct{}{}}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if !strings.Contains(o, "*") {
			p.exact[o] = struct{}{}
			continue
		}
		parts := strings.Split(o, "*")
		for i := range parts {
			parts[i] = regexp.QuoteMeta(parts[i])
		}
		re, err := regexp.Compile("^" + strings.Join(parts, "[^/]+") + "$")
		if err != nil {
			return nil, fmt.Errorf("cors: bad origin pattern %q: %w", o, err)
		}
		p.patterns = append(p.patterns, re)
	}
	return p, nil
}

// Allowed reports whether origin is on the list. An empty origin is never allowed.
func (p *Policy) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, re := range p.patterns {
		if re.MatchString(origin) {
			return true
		}
	}
	return false
}

// Middleware attaches CORS headers for allowed origins and answers preflight requests
// with 204. Disallowed origins get no CORS headers; preflights from them still get 204.
func (p *Policy) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if p.Allowed(origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
