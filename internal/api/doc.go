// Package api содержит административный HTTP API планировщика.
//
// Структура:
//   - handler.go          — Handler с DI (cache, monitor, poller, supplier, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - partition_handler.go — партиции и timestamp публикаций
//   - poll_handler.go     — ручной тик и статус poller'а
//   - version_handler.go  — версии артефактов
//
// API монтируется в mux dryrun-scheduler рядом с /healthz и /metrics.
package api
