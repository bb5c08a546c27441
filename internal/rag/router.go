package rag

import "strings"

// Route is the classified intent of a user question.
type Route string

const (
	RouteGreeting Route = "greeting"
	RouteGuide    Route = "guide"
	RouteDefault  Route = "default"
	RouteError    Route = "error"
)

// routeRules are evaluated in order; the first rule with a matching keyword
// wins, so greetings take priority over guide keywords even when both
// appear in the question.
var routeRules = []struct {
	keywords []string
	route    Route
}{
	{
		keywords: []string{"안녕", "hello", "hi", "hey", "안녕하세요"},
		route:    RouteGreeting,
	},
	{
		keywords: []string{"가이드", "entra", "entra id", "entraid", "entraapp", "ktauth", "설명", "구성", "설치"},
		route:    RouteGuide,
	},
}

// RouteQuestion classifies a question by keyword membership. It is a pure
// function: lower-cases and trims the input, then applies the rule list.
// Empty input always routes to default.
func RouteQuestion(question string) Route {
	normalized := strings.ToLower(strings.TrimSpace(question))
	if normalized == "" {
		return RouteDefault
	}
	for _, rule := range routeRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(normalized, keyword) {
				return rule.route
			}
		}
	}
	return RouteDefault
}
