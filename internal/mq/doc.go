// Package mq предоставляет инфраструктуру публикации в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange и очереди артефактов
//   - publisher.go  — публикация событий артефактов
//
// Exchanges:
//   - dryrun.artifacts — события публикации dry-run артефактов
//     (routing key "published", очередь artifacts.published)
//
// MessageId каждого сообщения — ключ идемпотентности "{partition}_{timestamp}",
// по нему потребитель отбрасывает повторы.
package mq
