package protocol

// UserID identifies a draft participant
type UserID int

// PlayerID identifies a draftable player
type PlayerID int

// MessageType is the wire discriminator carried in every message's "type" field
type MessageType string

// Client -> server commands
const (
	TypeStartDraft  MessageType = "start_draft"
	TypePauseDraft  MessageType = "pause_draft"
	TypeResumeDraft MessageType = "resume_draft"
	TypeMakePick    MessageType = "make_pick"
)

// Server -> client events
const (
	TypeDraftStarted   MessageType = "draft_started"
	TypeDraftState     MessageType = "draft_state"
	TypePickMade       MessageType = "pick_made"
	TypeTurnChanged    MessageType = "turn_changed"
	TypeDraftCompleted MessageType = "draft_completed"
	TypeDraftPaused    MessageType = "draft_paused"
	TypeDraftResumed   MessageType = "draft_resumed"
	TypeUserJoined     MessageType = "user_joined"
	TypeUserLeft       MessageType = "user_left"
	TypeError          MessageType = "error"
)

// Command is a message sent from the client to the server
type Command interface {
	Type() MessageType
	isCommand()
}

// StartDraftCommand asks the server to begin the draft (admin)
type StartDraftCommand struct {
	EventID          int        `json:"eventID"`
	PickOrder        []UserID   `json:"pickOrder"`
	TotalRounds      int        `json:"totalRounds"`
	TimerDuration    int        `json:"timerDuration"` // seconds per pick
	AvailablePlayers []PlayerID `json:"availablePlayers"`
}

// PauseDraftCommand pauses the pick clock (admin)
type PauseDraftCommand struct{}

// ResumeDraftCommand resumes a paused draft (admin)
type ResumeDraftCommand struct{}

// MakePickCommand submits a selection. UserID may differ from the sender when
// an admin picks on someone's behalf; the server decides whether that is allowed.
type MakePickCommand struct {
	UserID   UserID   `json:"userID"`
	PlayerID PlayerID `json:"playerID"`
}

func (StartDraftCommand) Type() MessageType  { return TypeStartDraft }
func (PauseDraftCommand) Type() MessageType  { return TypePauseDraft }
func (ResumeDraftCommand) Type() MessageType { return TypeResumeDraft }
func (MakePickCommand) Type() MessageType    { return TypeMakePick }

func (StartDraftCommand) isCommand()  {}
func (PauseDraftCommand) isCommand()  {}
func (ResumeDraftCommand) isCommand() {}
func (MakePickCommand) isCommand()    {}

// Event is a message pushed by the server. The set of implementations is
// closed; anything the client does not recognise decodes to UnknownEvent.
type Event interface {
	Type() MessageType
	isEvent()
}

// PickRecord is one entry of the server's pick history
type PickRecord struct {
	UserID     UserID   `json:"userID"`
	PlayerID   PlayerID `json:"playerID"`
	PickNumber int      `json:"pickNumber"`
	Round      int      `json:"round"`
	AutoDraft  bool     `json:"autoDraft"`
}

// DraftStartedEvent is broadcast once when the draft begins
type DraftStartedEvent struct {
	CurrentTurn      UserID     `json:"currentTurn"`
	RoundNumber      int        `json:"roundNumber"`
	TurnDeadline     *int64     `json:"turnDeadline"` // unix seconds
	PickOrder        []UserID   `json:"pickOrder"`
	TotalRounds      int        `json:"totalRounds"`
	AvailablePlayers []PlayerID `json:"availablePlayers"`
}

// DraftStateEvent is a full resync of the draft, sent after (re)connecting
type DraftStateEvent struct {
	Status           string       `json:"status"`
	CurrentTurn      *UserID      `json:"currentTurn"`
	RoundNumber      int          `json:"roundNumber"`
	TotalRounds      int          `json:"totalRounds"`
	CurrentPickIndex int          `json:"currentPickIndex"`
	PickOrder        []UserID     `json:"pickOrder"`
	AvailablePlayers []PlayerID   `json:"availablePlayers"`
	PickHistory      []PickRecord `json:"pickHistory"`
	TurnDeadline     *int64       `json:"turnDeadline"`  // unix seconds
	RemainingTime    float64      `json:"remainingTime"` // seconds
	ConnectedUserIDs []UserID     `json:"connectedUserIDs"`
}

// Wire values of DraftStateEvent.Status
const (
	WireStatusNotStarted = "not_started"
	WireStatusInProgress = "in_progress"
	WireStatusPaused     = "paused"
	WireStatusCompleted  = "completed"
)

// PickMadeEvent confirms a pick. PickNumber is optional on the wire and is not
// used for numbering; clients derive it from their own history.
type PickMadeEvent struct {
	UserID     UserID   `json:"userID"`
	PlayerID   PlayerID `json:"playerID"`
	Round      int      `json:"round"`
	AutoDraft  bool     `json:"autoDraft"`
	PickNumber *int     `json:"pickNumber,omitempty"`
}

// TurnChangedEvent moves the clock to the next participant
type TurnChangedEvent struct {
	CurrentTurn  UserID `json:"currentTurn"`
	RoundNumber  int    `json:"roundNumber"`
	TurnDeadline *int64 `json:"turnDeadline"`
}

// DraftCompletedEvent ends the draft
type DraftCompletedEvent struct {
	TotalRounds int `json:"totalRounds"`
}

// DraftPausedEvent freezes the clock with the given remainder
type DraftPausedEvent struct {
	RemainingTime float64 `json:"remainingTime"` // seconds
}

// DraftResumedEvent restarts the clock with a fresh absolute deadline
type DraftResumedEvent struct {
	CurrentTurn  UserID `json:"currentTurn"`
	RoundNumber  int    `json:"roundNumber"`
	TurnDeadline *int64 `json:"turnDeadline"`
}

// UserJoinedEvent reports a participant's first live connection
type UserJoinedEvent struct {
	UserID   UserID `json:"userID"`
	Username string `json:"username,omitempty"`
}

// UserLeftEvent reports a participant's last connection closing
type UserLeftEvent struct {
	UserID UserID `json:"userID"`
}

// ErrorEvent carries an application error such as "not your turn"
type ErrorEvent struct {
	Error string `json:"error"`
}

// UnknownEvent holds a message whose discriminator this client does not know
type UnknownEvent struct {
	Kind MessageType
	Raw  []byte
}

func (DraftStartedEvent) Type() MessageType   { return TypeDraftStarted }
func (DraftStateEvent) Type() MessageType     { return TypeDraftState }
func (PickMadeEvent) Type() MessageType       { return TypePickMade }
func (TurnChangedEvent) Type() MessageType    { return TypeTurnChanged }
func (DraftCompletedEvent) Type() MessageType { return TypeDraftCompleted }
func (DraftPausedEvent) Type() MessageType    { return TypeDraftPaused }
func (DraftResumedEvent) Type() MessageType   { return TypeDraftResumed }
func (UserJoinedEvent) Type() MessageType     { return TypeUserJoined }
func (UserLeftEvent) Type() MessageType       { return TypeUserLeft }
func (ErrorEvent) Type() MessageType          { return TypeError }
func (e UnknownEvent) Type() MessageType      { return e.Kind }

func (DraftStartedEvent) isEvent()   {}
func (DraftStateEvent) isEvent()     {}
func (PickMadeEvent) isEvent()       {}
func (TurnChangedEvent) isEvent()    {}
func (DraftCompletedEvent) isEvent() {}
func (DraftPausedEvent) isEvent()    {}
func (DraftResumedEvent) isEvent()   {}
func (UserJoinedEvent) isEvent()     {}
func (UserLeftEvent) isEvent()       {}
func (ErrorEvent) isEvent()          {}
func (UnknownEvent) isEvent()        {}
