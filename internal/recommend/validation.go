package recommend

import (
	"strings"

	"github.com/spigell/vendor-matcher/internal/ranking"
)

// ValidationError lists the request fields that are missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func normalizeRequest(req ranking.Request) ranking.Request {
	req.ProjectTitle = strings.TrimSpace(req.ProjectTitle)
	req.ServiceCategory = strings.TrimSpace(req.ServiceCategory)
	req.ProjectDescription = strings.TrimSpace(req.ProjectDescription)
	return req
}

func validateRequest(req ranking.Request) error {
	var missing []string
	if req.ProjectTitle == "" {
		missing = append(missing, "projectTitle")
	}
	if req.ServiceCategory == "" {
		missing = append(missing, "serviceCategory")
	}
	if req.ProjectDescription == "" {
		missing = append(missing, "projectDescription")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
