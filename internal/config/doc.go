// Package config загружает конфигурацию dry-run планировщика.
//
// Источники (по возрастанию приоритета):
//   - значения по умолчанию (Default)
//   - YAML-файл (путь из флага или DRYRUN_CONFIG)
//   - переменные окружения DB_URL, REDIS_URL, RABBITMQ_URL, KEEL_URL,
//     SCHED_PORT, STORE_PREFIX
//
// Длительности задаются строками Go ("30s", "10m").
// Validate отбрасывает некорректную конфигурацию с ErrInvalidConfig.
package config
