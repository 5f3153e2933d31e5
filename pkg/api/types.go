package api

// User is a registered account.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

// Group is a set of members that propose and vote on moves together.
type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"owner_id"`
	JoinKey   string `json:"join_key,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// Settings are a group's voting rules.
type Settings struct {
	GroupID           string `json:"group_id"`
	MinVotesRequired  int    `json:"min_votes_required"`
	VoteDeadlineHours int    `json:"vote_deadline_hours"`
	UpdatedAt         int64  `json:"updated_at,omitempty"`
}

// Move is a proposed activity. Times are Unix seconds.
type Move struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   int64  `json:"created_at"`
	Deadline    int64  `json:"deadline"`
}

// Tally is the live vote count of a move.
type Tally struct {
	VoteCount int      `json:"vote_count"`
	VoterIDs  []string `json:"voter_ids"`
}

// Move statuses.
const (
	StatusActive   = "active"
	StatusApproved = "approved"
	StatusExpired  = "expired"
)

// ListedMove is a move with its tally and derived status.
type ListedMove struct {
	Move     Move   `json:"move"`
	Tally    Tally  `json:"tally"`
	Status   string `json:"status"`
	Approved bool   `json:"approved"`
	Expired  bool   `json:"expired"`
}

// Event is a change pushed to WatchGroup subscribers.
type Event struct {
	Type    string `json:"type"`
	GroupID string `json:"group_id"`
	MoveID  string `json:"move_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Count   int    `json:"count,omitempty"`
	At      int64  `json:"at"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type JoinGroupRequest struct {
	JoinKey string `json:"join_key"`
}

type JoinGroupResponse struct {
	Group Group `json:"group"`
	// Joined is false when the caller was already a member.
	Joined bool `json:"joined"`
}

type GetMemberCountRequest struct {
	GroupID string `json:"group_id"`
}

type GetMemberCountResponse struct {
	Count int `json:"count"`
}

type GetSettingsRequest struct {
	GroupID string `json:"group_id"`
}

type GetSettingsResponse struct {
	Settings Settings `json:"settings"`
}

type UpdateSettingsRequest struct {
	GroupID           string `json:"group_id"`
	MinVotesRequired  int    `json:"min_votes_required"`
	VoteDeadlineHours int    `json:"vote_deadline_hours"`
}

type UpdateSettingsResponse struct {
	Settings Settings `json:"settings"`
}

type CreateMoveRequest struct {
	GroupID     string `json:"group_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// RequestID makes retries of the same create return the original move.
	RequestID string `json:"request_id,omitempty"`
}

type CreateMoveResponse struct {
	Move Move `json:"move"`
}

type EditMoveRequest struct {
	MoveID      string `json:"move_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type EditMoveResponse struct {
	Move Move `json:"move"`
}

type DeleteMoveRequest struct {
	MoveID string `json:"move_id"`
}

type DeleteMoveResponse struct{}

type ListMovesRequest struct {
	GroupID string `json:"group_id"`
}

type ListMovesResponse struct {
	Moves []ListedMove `json:"moves"`
}

type SweepGroupRequest struct {
	GroupID string `json:"group_id"`
}

type SweepGroupResponse struct {
	Removed int `json:"removed"`
}

type WatchGroupRequest struct {
	GroupID string `json:"group_id"`
}

type CastVoteRequest struct {
	MoveID string `json:"move_id"`
}

type CastVoteResponse struct {
	Tally    Tally  `json:"tally"`
	Status   string `json:"status"`
	Approved bool   `json:"approved"`
	// Inserted is false when the caller had already voted.
	Inserted bool `json:"inserted"`
}

type GetTallyRequest struct {
	GroupID string `json:"group_id"`
}

type GetTallyResponse struct {
	Tallies map[string]Tally `json:"tallies"`
}
