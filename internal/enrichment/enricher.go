package enrichment

import (
	"fmt"

	"support-desk/internal/common/logger"
	"support-desk/internal/models"
)

// RequestContext carries the request attributes the enricher derives
// metadata from.
type RequestContext struct {
	UserAgent string
	ClientIP  string
}

// Enricher attaches browser and location metadata to a submission. It never
// fails the pipeline: missing or unresolvable inputs leave the corresponding
// metadata empty.
type Enricher struct {
	resolver    Resolver
	testIP      string
	development bool
	logger      logger.Logger
}

func New(resolver Resolver, testIP string, development bool, log logger.Logger) *Enricher {
	return &Enricher{
		resolver:    resolver,
		testIP:      testIP,
		development: development,
		logger:      log.WithFields(map[string]interface{}{"component": "enricher"}),
	}
}

// Enrich populates sub.Browser and sub.Location from the request context.
// Called exactly once, at creation time, before the submission is persisted.
func (e *Enricher) Enrich(sub *models.Submission, req RequestContext) {
	if browser := Browser(req.UserAgent); browser != nil {
		sub.Browser = browser
	}

	clientIP := req.ClientIP
	// Local requests resolve to nothing useful, so development runs use a
	// fixed, routable test address.
	if e.development && e.testIP != "" {
		clientIP = e.testIP
	}

	if e.resolver == nil || clientIP == "" {
		return
	}

	loc := e.resolver.Resolve(clientIP)
	if loc == nil {
		e.logger.Debug("no geolocation result", map[string]interface{}{
			"clientIp": clientIP,
		})
		return
	}

	sub.Location = map[string]string{
		"ipAddress": clientIP,
		"location":  fmt.Sprintf("%s, %s %s", loc.City, loc.Region, loc.Country),
		"timeZone":  loc.TimeZone,
	}
}
