package pubsub

import "fmt"

// Channel naming: {prefix}:user:{userID}:{suffix}.
// The kafka driver maps this to topic "{prefix}-{suffix}" keyed by userID.
const (
	// Activity events (follow, comment) addressed to a target user.
	ChannelActivity = "activity:user:%s:events"

	// Rendered notifications to be pushed to a user's live connections.
	ChannelDelivery = "notify:user:%s:deliver"
)

// Event types carried on the activity channel.
const (
	EventFollowed  = "follow"
	EventCommented = "comment"
)

// Event type carried on the delivery channel.
const EventNotification = "new_notification"

// ActivityChannel returns the activity channel for a target user.
func ActivityChannel(userID string) string {
	return fmt.Sprintf(ChannelActivity, userID)
}

// DeliveryChannel returns the delivery channel for a target user.
func DeliveryChannel(userID string) string {
	return fmt.Sprintf(ChannelDelivery, userID)
}

// ActivityPattern matches every activity channel.
func ActivityPattern() string {
	return fmt.Sprintf(ChannelActivity, "*")
}

// DeliveryPattern matches every delivery channel.
func DeliveryPattern() string {
	return fmt.Sprintf(ChannelDelivery, "*")
}

// knownTopics lists the kafka topics derived from the channel formats above.
func knownTopics() []string {
	var topics []string
	for _, format := range []string{ChannelActivity, ChannelDelivery} {
		topic, _, err := channelToTopicAndKey(fmt.Sprintf(format, "x"))
		if err == nil {
			topics = append(topics, topic)
		}
	}
	return topics
}
