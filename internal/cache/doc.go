// Package cache хранит timestamp последней публикации каждой партиции.
//
// Структура:
//   - cache.go  — Cache: формат ключей и разбор значений
//   - memory.go — in-memory HashStore (тесты, один процесс)
//   - redis.go  — HashStore поверх Redis (HGET/HSET)
//
// PostgreSQL-реализация HashStore находится в internal/repo.
//
// Формат ключа: "{prefix}:dryrun:{partition}", поле "lastPublishTimestamp",
// значение — миллисекунды строкой. Отсутствие поля означает "0".
package cache
