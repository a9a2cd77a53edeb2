package mq

import (
	"fmt"
	"strings"
)

const (
	GpsTopicTemplate     = "%s/gps"
	StatusTopicTemplate  = "%s/status"
	SosTopicTemplate     = "%s/sos"
	WeatherTopicTemplate = "%s/weather"
	EmailsTopicTemplate  = "%s/emails"
)

// TopicManager builds the fixed umbrella topic names from a base topic.
type TopicManager struct {
	BaseTopic string
}

func NewTopicManager(baseTopic string) *TopicManager {
	return &TopicManager{BaseTopic: strings.TrimSuffix(baseTopic, "/")}
}

func (m *TopicManager) GetGpsTopic() string {
	return fmt.Sprintf(GpsTopicTemplate, m.BaseTopic)
}

func (m *TopicManager) GetStatusTopic() string {
	return fmt.Sprintf(StatusTopicTemplate, m.BaseTopic)
}

func (m *TopicManager) GetSosTopic() string {
	return fmt.Sprintf(SosTopicTemplate, m.BaseTopic)
}

func (m *TopicManager) GetWeatherTopic() string {
	return fmt.Sprintf(WeatherTopicTemplate, m.BaseTopic)
}

func (m *TopicManager) GetEmailsTopic() string {
	return fmt.Sprintf(EmailsTopicTemplate, m.BaseTopic)
}

func (m *TopicManager) GetBaseTopic() string {
	return m.BaseTopic
}
