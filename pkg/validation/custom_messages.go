package validation

var customValidationMessages = map[string]map[string]string{
	"Email": {
		"required": "email is required",
		"email":    "email is not valid",
		"max":      "email must be at most 255 characters",
	},
	"Username": {
		"required": "username is required",
		"max":      "username must be at most 50 characters",
	},
	"Fullname": {
		"required": "fullname is required",
		"max":      "fullname must be at most 100 characters",
	},
	"Password": {
		"required": "password is required",
	},
	"OldPassword": {
		"required": "old password is required",
	},
	"NewPassword": {
		"required": "new password is required",
	},
	"Title": {
		"max": "title must be at most 200 characters",
	},
	"Description": {
		"max": "description must be at most 5000 characters",
	},
}

// CustomMessage returns field specific messages keyed by validation tag, or nil.
func CustomMessage(field string) map[string]string {
	return customValidationMessages[field]
}
