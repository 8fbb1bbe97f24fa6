package domain

import "strings"

const (
	SystemEntity = "system"

	TopicSystemConnected = SystemEntity + ".connected"
	TopicSystemPong      = SystemEntity + ".pong"
	TopicSystemError     = SystemEntity + ".error"

	ActionConnected = "connected"
	ActionPong      = "pong"
	ActionError     = "error"
	ActionState     = "state"
	ActionFetched   = "fetched"
	ActionFailed    = "failed"
)

// StateTopic returns the topic carrying a resource's view state.
func StateTopic(resource string) string {
	return buildResourceTopic(resource, ActionState)
}

// FetchedTopic returns the topic of successful fetch events.
func FetchedTopic(resource string) string {
	return buildResourceTopic(resource, ActionFetched)
}

// FailedTopic returns the topic of failed fetch events.
func FailedTopic(resource string) string {
	return buildResourceTopic(resource, ActionFailed)
}

// ErrorTopic returns the topic used to reject resource-scoped commands.
func ErrorTopic(resource string) string {
	return buildResourceTopic(resource, ActionError)
}

func buildResourceTopic(resource, action string) string {
	cleanResource := strings.TrimSpace(resource)
	cleanAction := strings.TrimSpace(action)
	if cleanResource == "" || cleanAction == "" {
		return ""
	}
	return cleanResource + "." + cleanAction
}
