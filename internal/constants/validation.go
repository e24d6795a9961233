package constants

// Field Length Limits
const (
	MaxUsernameLength    = 50
	MaxFullnameLength    = 100
	MaxEmailLength       = 255
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
)
