package editor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EditField sets one top-level scalar field by its json name. Required-ness is not checked here.
func (s *Session) EditField(field string, value any) error {
	if err := s.touch(); err != nil {
		return err
	}

	cs := &s.Draft.CaseStudy
	if field == "team_size" {
		n, err := toInt(value)
		if err != nil {
			return fmt.Errorf("%w: team_size: %v", ErrInvalidValue, err)
		}
		cs.TeamSize = n
		delete(s.FieldErrors, field)
		return nil
	}

	str, ok := value.(string)
	if !ok {
		if value != nil {
			return fmt.Errorf("%w: %s expects a string", ErrInvalidValue, field)
		}
	}

	var target *string
	switch field {
	case "title":
		target = &cs.Title
	case "description":
		target = &cs.Description
	case "overview":
		target = &cs.Overview
	case "challenge":
		target = &cs.Challenge
	case "solution":
		target = &cs.Solution
	case "outcome":
		target = &cs.Outcome
	case "cover_image":
		target = &cs.CoverImage
	case "duration":
		target = &cs.Duration
	case "role":
		target = &cs.Role
	case "video_url":
		target = &cs.VideoURL
	case "live_url":
		target = &cs.LiveURL
	case "github_url":
		target = &cs.GithubURL
	case "client":
		target = &cs.Client
	case "industry":
		target = &cs.Industry
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	*target = str
	delete(s.FieldErrors, field)
	return nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}
