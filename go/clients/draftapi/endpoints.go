package draftapi

const (
	// DefaultBaseURL is the draft server's REST root
	DefaultBaseURL = "http://localhost:8080"

	EventsEndpoint  = "/events"
	PlayersEndpoint = "/players"
	UsersEndpoint   = "/users"
)
