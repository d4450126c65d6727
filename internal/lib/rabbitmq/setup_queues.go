package rabbitmq

import "github.com/magabrotheeeer/zentask/internal/models"

// QueueConfig описывает очередь и ключ маршрутизации, которым она привязана к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// AuditQueueName — очередь, в которую попадают все события жизненного цикла задач.
const AuditQueueName = "tasks.audit"

// GetTaskAuditQueues возвращает привязки очереди аудита ко всем типам событий задач.
func GetTaskAuditQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: AuditQueueName, RoutingKey: string(models.EventTaskCreated)},
		{QueueName: AuditQueueName, RoutingKey: string(models.EventTaskUpdated)},
		{QueueName: AuditQueueName, RoutingKey: string(models.EventTaskDeleted)},
	}
}
