package dto

type SubscriptionToggleResponse struct {
	ChannelID  uint `json:"channelId"`
	Subscribed bool `json:"subscribed"`
}
