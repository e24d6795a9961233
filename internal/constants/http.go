package constants

// HTTP Header Names
const (
	HeaderContentType    = "Content-Type"
	HeaderAuthorization  = "Authorization"
	HeaderXRequestID     = "X-Request-ID"
	HeaderXCorrelationID = "X-Correlation-ID"
)

// Session cookies
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
	BearerPrefix       = "Bearer "
)

// Multipart form fields
const (
	FormFieldAvatar     = "avatar"
	FormFieldCoverImage = "coverImage"
	FormFieldVideoFile  = "videoFile"
	FormFieldThumbnail  = "thumbnail"
)

// Common HTTP Error Messages
const (
	MsgBadRequest         = "Invalid request"
	MsgValidationFailed   = "Validation failed"
	MsgInternalError      = "Internal server error"
	MsgServiceUnavailable = "Service temporarily unavailable"
	MsgRateLimited        = "Too many requests"
)

// HTTP Success Messages
const (
	MsgUserRegistered     = "User registered successfully"
	MsgUserLoggedIn       = "User logged in successfully"
	MsgUserLoggedOut      = "User logged out"
	MsgTokenRefreshed     = "Access token refreshed"
	MsgPasswordChanged    = "Password changed successfully"
	MsgCurrentUser        = "Current user fetched successfully"
	MsgAccountUpdated     = "Account details updated successfully"
	MsgAvatarUpdated      = "Avatar image updated successfully"
	MsgCoverImageUpdated  = "Cover image updated successfully"
	MsgChannelFetched     = "User channel fetched successfully"
	MsgVideosFetched      = "Videos fetched successfully"
	MsgVideoPublished     = "Video published successfully"
	MsgVideoFetched       = "Video fetched successfully"
	MsgVideoUpdated       = "Video updated successfully"
	MsgVideoDeleted       = "Video deleted successfully"
	MsgPublishToggled     = "Publish status toggled successfully"
	MsgSubscriptionToggle = "Subscription toggled successfully"
	MsgCacheStats         = "Cache statistics fetched"
	MsgCacheInvalidated   = "Cache invalidated successfully"
	MsgCachePurged        = "Cache purged successfully"
)
