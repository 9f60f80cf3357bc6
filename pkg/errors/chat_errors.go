package errors

var (
	// Domain errors used across usecases and repositories.
	ErrNotLoggedIn        = Unauthorized("user not logged in")
	ErrUserNotFound       = NotFound("user not found")
	ErrChatNotFound       = NotFound("chat not found")
	ErrMessageNotFound    = NotFound("message not found")
	ErrNotParticipant     = Forbidden("user is not a participant of this chat")
	ErrNotReceiver        = Forbidden("only the receiver may mark a message as read")
	ErrReceiverMismatch   = InvalidReceiver("receiver does not belong to this chat")
	ErrContactExists      = Conflict("this user is already your contact")
	ErrSelfContact        = InvalidArg("you cannot add yourself as a contact")
	ErrEmptyContent       = InvalidArg("message content cannot be empty")
	ErrGroupNameRequired  = InvalidArg("group name cannot be empty")
	ErrGroupNeedsMembers  = InvalidArg("a group chat needs at least one other member")
	ErrStatusRegression   = InvalidArg("message status can only advance")
)

func ErrStoreWrite(cause error) error {
	return Wrap(CodeStoreUnavailable, "failed to persist message", cause)
}

func ErrStoreRead(cause error) error {
	return Wrap(CodeStoreUnavailable, "failed to read from message store", cause)
}
