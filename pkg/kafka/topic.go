package kafka

import "fmt"

// TopicPrefix is the standard prefix for all storeadmin Kafka topics.
const TopicPrefix = "storeadmin"

// Topic builds a topic name of the form <prefix>.<domain>.<action>.
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
