package apperr

// Sentinels for every failure the core can surface. Controllers translate
// kinds to HTTP statuses without inspecting messages.
var (
	ErrAttendeeNotFound     = New(KindNotFound, "ATTENDEE_NOT_FOUND", "attendee not found")
	ErrUserNotAttendee      = New(KindNotFound, "USER_NOT_ATTENDEE", "user has no attendee record")
	ErrEventNotFound        = New(KindNotFound, "EVENT_NOT_FOUND", "event not found")
	ErrTeamNotFound         = New(KindNotFound, "TEAM_NOT_FOUND", "team not found")
	ErrActivityNotFound     = New(KindNotFound, "ACTIVITY_NOT_FOUND", "activity not found")
	ErrRosterEntryNotFound  = New(KindNotFound, "ROSTER_ENTRY_NOT_FOUND", "attendee not found in event")
	ErrNotificationNotFound = New(KindNotFound, "NOTIFICATION_NOT_FOUND", "notification not found")
	ErrTokenNotFound        = New(KindNotFound, "TOKEN_NOT_FOUND", "messaging token does not exist")

	ErrAttendeeExists    = New(KindConflict, "ATTENDEE_EXISTS", "attendee with this user id already exists")
	ErrAlreadyRegistered = New(KindConflict, "ATTENDEE_ALREADY_REGISTERED", "attendee already registered to event")
	ErrAlreadyOnTeam     = New(KindConflict, "ALREADY_ON_TEAM", "attendee already belongs to a team for this event")
	ErrTeamFull          = New(KindConflict, "TEAM_FULL", "team has reached its maximum size")
	ErrNotATeamMember    = New(KindConflict, "NOT_A_TEAM_MEMBER", "attendee is not a member of this team")
	ErrAlreadyScanned    = New(KindConflict, "ALREADY_SCANNED", "attendee already scanned by this attendee")
	ErrTokenExists       = New(KindConflict, "TOKEN_EXISTS", "messaging token already exists")
	ErrAlreadyInActivity = New(KindConflict, "ALREADY_IN_ACTIVITY", "attendee already participates in activity")

	ErrSelfScan     = New(KindInvalidOperation, "SELF_SCAN", "an attendee cannot scan itself")
	ErrNoCandidates = New(KindInvalidOperation, "NO_CANDIDATES", "activity has no attendees to raffle")

	ErrIdentityUnresolved = New(KindUnresolvable, "IDENTITY_UNRESOLVED", "identity directory returned no user")
)
