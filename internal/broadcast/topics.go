package broadcast

import "strings"

// Nombres de topic del protocolo. Los suscriptores existentes dependen de
// estas cadenas exactas, no cambiarlas.
const TopicThreads = "topic/threads"

const (
	threadTopicPrefix = "topic/threads/"
	typingSuffix      = "/typing"
	userTopicPrefix   = "topic/users/"
	userTopicSuffix   = "/threads"
)

// ThreadTopic es el feed de mensajes de un hilo.
func ThreadTopic(threadID string) string {
	return threadTopicPrefix + threadID
}

// ThreadTypingTopic es el feed de señales de typing de un hilo.
func ThreadTypingTopic(threadID string) string {
	return ThreadTopic(threadID) + typingSuffix
}

// UserThreadsTopic es el feed de novedades de hilos de un cliente.
func UserThreadsTopic(userID string) string {
	return userTopicPrefix + userID + userTopicSuffix
}

// ThreadIDFromTopic extrae el id de hilo de un topic de mensajes o typing.
// Devuelve false para cualquier otro topic, incluido TopicThreads.
func ThreadIDFromTopic(topic string) (string, bool) {
	if !strings.HasPrefix(topic, threadTopicPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(topic, threadTopicPrefix)
	id = strings.TrimSuffix(id, typingSuffix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
