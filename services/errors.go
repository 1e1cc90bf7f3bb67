package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Entity lookups
	ErrRoundNotFound      = errors.New("round not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrJudgeNotFound      = errors.New("judge not found")
	ErrScoreSheetNotFound = errors.New("score sheet not found")

	// Aggregation: no score sheet has been submitted for the team in the
	// round. Deliberately distinct from a submitted total of zero.
	ErrMarksNotFound = errors.New("no marks submitted for this team in this round")

	// Round validation
	ErrValidationFailed         = errors.New("validation failed")
	ErrRoundStageInvalid        = errors.New("unknown bracket stage")
	ErrRoundTeamsRequired       = errors.New("round requires two teams")
	ErrRoundSameTeam            = errors.New("round cannot pair a team against itself")
	ErrRoundScheduleRequired    = errors.New("round requires a schedule date and positive duration")
	ErrRoundVenueRequired       = errors.New("offline round requires a venue")
	ErrRoundMeetURLRequired     = errors.New("online round requires a meeting url")
	ErrRoundLocationModeInvalid = errors.New("round location mode must be offline or online")
	ErrTeamNotEligible          = errors.New("team is not eligible for this stage")

	// Winner commit protocol
	ErrWinnerInvalidTeam   = errors.New("winner must be one of the round's two teams")
	ErrMarksIncomplete     = errors.New("both teams need submitted marks before a winner can be chosen")
	ErrRoundAlreadyDecided = errors.New("round winner has already been decided")

	// Bracket integrity. Signals a violated invariant upstream, not a user
	// mistake: surfaced to the operator log wherever it is detected.
	ErrBracketInconsistent = errors.New("bracket state is inconsistent")

	// Score sheet rules
	ErrScoreSheetLocked        = errors.New("score sheets are locked once the round is decided")
	ErrScoreSheetDuplicate     = errors.New("judge has already scored this team in this round")
	ErrScoreSheetTeamNotPaired = errors.New("team is not part of this round")
	ErrScoreSheetNotOwned      = errors.New("score sheet belongs to another judge")

	// Teams
	ErrTeamCodeConflict = errors.New("team code is already in use")
	ErrTeamReferenced   = errors.New("team cannot be deleted while rounds reference it")

	// Auth
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")
)
